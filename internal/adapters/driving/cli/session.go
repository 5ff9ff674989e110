package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

var exportFormat string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage conversations",
	Long:  `Commands for listing, inspecting, exporting and deleting saved conversations.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE:  runSessionList,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start a new session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionNew,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a session as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionExport,
}

func init() {
	sessionExportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(driving.ExportJSON), "export format (json or yaml)")
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionCmd.AddCommand(sessionExportCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions found.")
		return nil
	}

	cmd.Println("Sessions:")
	cmd.Println()
	for i := range sessions {
		title := sessions[i].Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  %s  %s\n", sessions[i].ID, title)
		cmd.Printf("      %d turns, updated %s\n", len(sessions[i].Turns), sessions[i].UpdatedAt.Format(time.DateTime))
	}
	return nil
}

func runSessionNew(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	title := ""
	if len(args) == 1 {
		title = args[0]
	}

	session, err := sessionService.Create(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	cmd.Println(session.ID)
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	session, err := sessionService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	title := session.Title
	if title == "" {
		title = "(untitled)"
	}
	cmd.Printf("Session: %s\n", title)
	cmd.Printf("ID: %s\n", session.ID)
	cmd.Printf("Created: %s\n", session.CreatedAt.Format(time.DateTime))
	cmd.Println(strings.Repeat("-", 40))
	if len(session.Turns) == 0 {
		cmd.Println("No turns yet.")
		return nil
	}
	for _, turn := range session.Turns {
		cmd.Printf("\nYou: %s\n", turn.Question)
		cmd.Printf("Assistant: %s\n", turn.Answer)
	}
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	cmd.Printf("Deleted session %s\n", args[0])
	return nil
}

func runSessionExport(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	data, err := sessionService.Export(cmd.Context(), args[0], driving.ExportFormat(strings.ToLower(exportFormat)))
	if err != nil {
		return fmt.Errorf("failed to export session: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/messages"
)

var (
	chatSession string
	chatNoSave  bool
)

// chatCmd represents the interactive chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about the contract in the terminal UI",
	Long: `Launch an interactive conversation about the contract.

Answers stream in as they are generated. Each follow-up question is rewritten
into a standalone question using the conversation so far.

Conversations are saved as sessions unless --no-save is set.
Use --session to continue an earlier conversation.

Controls:
  Enter      - Send question
  Esc        - Cancel the answer being generated
  Ctrl+S     - Show or hide sources
  Ctrl+N     - New conversation
  PgUp/PgDn  - Scroll
  F1         - Toggle help
  Ctrl+C     - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "continue the given session")
	chatCmd.Flags().BoolVar(&chatNoSave, "no-save", false, "keep the conversation in memory only")
	chatCmd.MarkFlagsMutuallyExclusive("session", "no-save")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	chat, err := requireChat()
	if err != nil {
		return err
	}

	ports := &tui.Ports{Chat: chat}
	sessionID := chatSession
	created := false
	if !chatNoSave {
		if sessionService == nil {
			if sessionID != "" {
				return errors.New("session service not configured")
			}
		} else {
			ports.Sessions = sessionService
			if sessionID == "" {
				session, err := sessionService.Create(cmd.Context(), "")
				if err != nil {
					return fmt.Errorf("failed to create session: %w", err)
				}
				sessionID = session.ID
				created = true
			}
		}
	}

	app, err := tui.NewApp(ports, sessionID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	stop := startPromptWatch(cmd.Context(), func(name string) {
		p.Send(messages.PromptsReloaded{Name: name})
	})
	defer stop()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	if ports.Sessions == nil {
		return nil
	}
	view := app.ChatView()
	if view.SessionID() == "" {
		return nil
	}
	// Drop a session created for this run if nothing was asked.
	if created && view.SessionID() == sessionID && len(view.History()) == 0 {
		return sessionService.Delete(cmd.Context(), sessionID)
	}
	cmd.PrintErrf("Session saved: %s\n", view.SessionID())
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and reset prompt templates",
	Long: `The chain uses two prompt templates, stored as editable text files:

  condense_question - rewrites a follow-up into a standalone question
                      (placeholders: {chat_history}, {question})
  qa                - answers from the retrieved passages
                      (placeholders: {question}, {context})

Edits take effect on the next question.`,
	RunE: runPromptsList,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt templates and their files",
	RunE:  runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:       "show [name]",
	Short:     "Print a prompt template",
	Args:      cobra.ExactArgs(1),
	ValidArgs: driven.PromptNames(),
	RunE:      runPromptsShow,
}

var promptsResetCmd = &cobra.Command{
	Use:       "reset [name]",
	Short:     "Restore a prompt template to its built-in text",
	Args:      cobra.ExactArgs(1),
	ValidArgs: driven.PromptNames(),
	RunE:      runPromptsReset,
}

var promptsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the prompt directory",
	RunE:  runPromptsPath,
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsResetCmd)
	promptsCmd.AddCommand(promptsPathCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}

	cmd.Println("Prompts:")
	for _, name := range driven.PromptNames() {
		cmd.Printf("  %-18s %s\n", name, promptStore.Path(name))
	}
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}
	if err := checkPromptName(args[0]); err != nil {
		return err
	}

	text, err := promptStore.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load prompt: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runPromptsReset(cmd *cobra.Command, args []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}
	if err := checkPromptName(args[0]); err != nil {
		return err
	}

	if err := promptStore.Reset(args[0]); err != nil {
		return fmt.Errorf("failed to reset prompt: %w", err)
	}
	cmd.Printf("Reset %s to its built-in text.\n", args[0])
	return nil
}

func runPromptsPath(cmd *cobra.Command, _ []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}
	cmd.Println(promptStore.Dir())
	return nil
}

func checkPromptName(name string) error {
	if !slices.Contains(driven.PromptNames(), name) {
		return fmt.Errorf("unknown prompt %q (expected one of %v)", name, driven.PromptNames())
	}
	return nil
}

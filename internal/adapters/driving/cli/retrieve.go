package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var retrieveJSON bool

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the contract passages a question would be answered from",
	Long: `Embed the query and print the most similar contract passages,
without calling the language model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	chat, err := requireChat()
	if err != nil {
		return err
	}

	passages, err := chat.Retrieve(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		data, err := json.MarshalIndent(passageOutputs(passages), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal passages: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(passages) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	for i := range passages {
		cmd.Printf("[%d] %s (%.2f)\n", i+1, passages[i].Citation(), passages[i].Score)
		cmd.Printf("    %s\n\n", strings.ReplaceAll(strings.TrimSpace(passages[i].Text), "\n", "\n    "))
	}
	return nil
}

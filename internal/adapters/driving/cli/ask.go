package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

var (
	askSession  string
	askNew      bool
	askNoStream bool
	askJSON     bool
	askSources  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the contract",
	Long: `Answer a single question about the contract.

Without --session the question is answered with no conversation history.
With --session the session's prior turns are used to rewrite the question
into a standalone one, and the new exchange is appended to the session.

The answer is streamed as it is generated unless --no-stream or --json is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue the given session")
	askCmd.Flags().BoolVar(&askNew, "new", false, "start a new session and print its ID")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "print the answer only once it is complete")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and its sources as JSON")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "list the passages the answer was based on")
	askCmd.MarkFlagsMutuallyExclusive("session", "new")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON shape of an answer.
type askOutput struct {
	Answer             string          `json:"answer"`
	StandaloneQuestion string          `json:"standalone_question"`
	SessionID          string          `json:"session_id,omitempty"`
	Sources            []passageOutput `json:"sources"`
}

type passageOutput struct {
	ID       string  `json:"id,omitempty"`
	Citation string  `json:"citation"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	chat, err := requireChat()
	if err != nil {
		return err
	}

	req := domain.AskRequest{
		SessionID: askSession,
		Question:  strings.Join(args, " "),
	}

	if askNew {
		if sessionService == nil {
			return errors.New("session service not configured")
		}
		session, err := sessionService.Create(cmd.Context(), "")
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		req.SessionID = session.ID
		if !askJSON {
			cmd.PrintErrf("Session: %s\n", session.ID)
		}
	}

	out := cmd.OutOrStdout()
	sink := domain.NoTokens()
	streamed := !askNoStream && !askJSON
	if streamed {
		sink = domain.Streaming(func(token string) error {
			_, err := fmt.Fprint(out, token)
			return err
		})
	}

	answer, err := chat.Ask(cmd.Context(), req, sink)
	if err != nil {
		if streamed {
			fmt.Fprintln(out)
		}
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer, req.SessionID)
	}

	if streamed {
		fmt.Fprintln(out)
	} else {
		fmt.Fprintln(out, answer.Text)
	}

	if askSources {
		printSources(out, answer.SourceDocuments)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer, sessionID string) error {
	data, err := json.MarshalIndent(askOutput{
		Answer:             answer.Text,
		StandaloneQuestion: answer.StandaloneQuestion,
		SessionID:          sessionID,
		Sources:            passageOutputs(answer.SourceDocuments),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printSources(w io.Writer, passages []domain.Passage) {
	if len(passages) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for i := range passages {
		fmt.Fprintf(w, "  [%d] %s (%.2f)\n", i+1, passages[i].Citation(), passages[i].Score)
	}
}

func passageOutputs(passages []domain.Passage) []passageOutput {
	out := make([]passageOutput, len(passages))
	for i := range passages {
		out[i] = passageOutput{
			ID:       passages[i].ID,
			Citation: passages[i].Citation(),
			Score:    passages[i].Score,
			Text:     passages[i].Text,
		}
	}
	return out
}

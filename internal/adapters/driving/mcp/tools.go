package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// TurnInput is one prior exchange supplied by the client.
type TurnInput struct {
	Question string `json:"question" jsonschema:"what the user asked"`
	Answer   string `json:"answer" jsonschema:"what the assistant replied"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string      `json:"question" jsonschema:"the question to answer about the contract"`
	History   []TurnInput `json:"history,omitempty" jsonschema:"prior exchanges, oldest first"`
	SessionID string      `json:"session_id,omitempty" jsonschema:"persisted session to continue; overrides history"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer             string          `json:"answer"`
	StandaloneQuestion string          `json:"standalone_question"`
	Sources            []PassageOutput `json:"sources"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find contract passages for"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	ID       string  `json:"id,omitempty"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Citation string  `json:"citation,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about the contract, optionally as a follow-up to prior exchanges",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the contract passages most relevant to a query",
	}, s.handleRetrieve)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	req := domain.AskRequest{
		SessionID: input.SessionID,
		Question:  input.Question,
		History:   make([]domain.ChatTurn, len(input.History)),
	}
	for i, turn := range input.History {
		req.History[i] = domain.ChatTurn{Question: turn.Question, Answer: turn.Answer}
	}

	answer, err := s.ports.Chat.Ask(ctx, req, domain.NoTokens())
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:             answer.Text,
		StandaloneQuestion: answer.StandaloneQuestion,
		Sources:            passageOutputs(answer.SourceDocuments),
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	passages, err := s.ports.Chat.Retrieve(ctx, input.Query)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Passages: passageOutputs(passages),
		Count:    len(passages),
	}, nil
}

func passageOutputs(passages []domain.Passage) []PassageOutput {
	out := make([]PassageOutput, len(passages))
	for i := range passages {
		out[i] = PassageOutput{
			ID:       passages[i].ID,
			Text:     passages[i].Text,
			Score:    passages[i].Score,
			Citation: passages[i].Citation(),
		}
	}
	return out
}

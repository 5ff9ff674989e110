package domain

import (
	"strings"
	"time"
)

// ChatTurn is one prior exchange in a conversation.
type ChatTurn struct {
	// Question is what the user asked.
	Question string

	// Answer is what the assistant replied.
	Answer string
}

// Answer is the result of a conversational retrieval call.
type Answer struct {
	// Text is the generated answer.
	Text string

	// StandaloneQuestion is the question used for retrieval.
	// Equal to the asked question when there was no history.
	StandaloneQuestion string

	// SourceDocuments are the passages the answer was grounded on, in retrieval order.
	SourceDocuments []Passage
}

// AskRequest is a question submitted through a driving surface.
type AskRequest struct {
	// SessionID optionally names a persisted session.
	// When set, history is loaded from it and the new turn is appended.
	SessionID string

	// Question is the follow-up question as typed by the user.
	Question string

	// History is used when SessionID is empty.
	History []ChatTurn
}

// Session is a persisted conversation.
type Session struct {
	ID        string
	Title     string
	Turns     []ChatTurn
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormatChatHistory renders history the way the condense prompt expects it:
// one "Human:" and one "Assistant:" line per turn, oldest first.
func FormatChatHistory(history []ChatTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, "Human: "+turn.Question+"\nAssistant: "+turn.Answer)
	}
	return strings.Join(lines, "\n")
}

// SanitiseQuestion trims the question and folds newlines into spaces.
func SanitiseQuestion(question string) string {
	question = strings.TrimSpace(question)
	question = strings.ReplaceAll(question, "\r\n", " ")
	return strings.ReplaceAll(question, "\n", " ")
}

// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// QuestionSubmitted is sent when the user sends a question.
type QuestionSubmitted struct {
	Question string
}

// TokenReceived carries one streamed token of the answer being generated.
type TokenReceived struct {
	Token string
}

// AnswerCompleted carries the finished answer, or the error that ended it.
type AnswerCompleted struct {
	Answer *domain.Answer
	Err    error
}

// SessionLoaded carries a persisted session to resume.
type SessionLoaded struct {
	Session *domain.Session
	Err     error
}

// SessionStarted signals a fresh session was created for a new chat.
type SessionStarted struct {
	Session *domain.Session
	Err     error
}

// PromptsReloaded signals an edited prompt file was picked up.
type PromptsReloaded struct {
	Name string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

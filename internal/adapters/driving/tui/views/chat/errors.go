package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoChatService indicates that no chat service was provided.
	ErrNoChatService = errors.New("chat service is required")

	// ErrCancelled is reported when the user aborts an answer.
	ErrCancelled = errors.New("answer cancelled")
)

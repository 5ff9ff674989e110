package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the raw prompt text for the given name.
	// Unknown names return an error; known names fall back to built-in defaults.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptCondenseQuestion rewrites a follow-up question into a standalone one.
	// Placeholders: {chat_history}, {question}.
	PromptCondenseQuestion = "condense_question"

	// PromptQA answers a question from retrieved contract passages.
	// Placeholders: {question}, {context}.
	PromptQA = "qa"
)

// PromptNames returns the names of all built-in prompts.
func PromptNames() []string {
	return []string{PromptCondenseQuestion, PromptQA}
}

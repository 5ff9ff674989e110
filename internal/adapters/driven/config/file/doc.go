// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.pdfchat.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable condense and QA prompt templates
//   - PromptWatcher: reloads the PromptStore when prompt files change
package file

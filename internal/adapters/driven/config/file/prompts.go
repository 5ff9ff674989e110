package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads the chain's prompt templates from user-editable files on disk.
// Missing or unreadable files fall back to the embedded defaults.
//
// Files are only created on first Load, never in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts holds the built-in condense and QA templates.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptCondenseQuestion: `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question.

Chat History:
{chat_history}
Follow Up Input: {question}
Standalone question:`,

	driven.PromptQA: `You are an AI assistant tasked with retrieving information from a data sheet for the options and pricing of various vehicles and accessories available for purchase under a specific Florida State Term Contract. The contract number and the name of the vendor can be found near the beginning of the document. The document contains line items of available makes and models from many major manufacturers. For example "Chevy" is a manufacturer, this is also known as a Make. "Silverado" is a Model, and "1500 Crew Cab" refers to the specific Package for this Make and Model combination. Other Make, Model and Package combinations include "FORD" "F-150" and "SUPER CREW CAB XL 157''WB SSV 4WD", or "TOYOTA" "SIENNA" and "FWD LE HYBRID 8-PASSENGER".  You will use your knowledge to successfully identify all of the other Make, Model and Packages available in this contract. There are additionally various addons and accessories listed in the data, including items under categories such as "Seat Upgrade" "Floor Protection" "Hitches & Accessories" and others. The data is formatted into columns, with headings for Year, Model Code, Model Description, MSRP and Contract Price. You are given the following extracted parts of a long document and a question. Provide a conversational answer based on the context provided. You must NEVER format responses into a table, only use lists. Generally speaking answers should be formatted as an easily readable list and include details of Year, Make, Model, Package, MSRP price and Contract Price, but omit the Model Code. Also reference the contract #, the PDF file name and any relevant page numbers in which the referenced results can be found. You should only provide hyperlinks that reference the context below. Do NOT make up hyperlinks. If you can't find the answer in the context below, just say "Hmm, I'm not sure." Don't try to make up an answer. If the question is not related to the context, politely respond that you are tuned to only answer questions that are related to the context.

Question: {question}
=========
{context}
=========
Answer in Markdown:`,
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.pdfchat/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".pdfchat", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("prompt file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Keep whichever value landed in the cache first.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Reset overwrites the prompt file for name with its built-in default.
func (s *PromptStore) Reset(name string) error {
	content, ok := defaultPrompts[name]
	if !ok {
		return fmt.Errorf("no built-in prompt %q", name)
	}
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	if err := os.WriteFile(s.Path(name), []byte(content), 0600); err != nil {
		return fmt.Errorf("reset prompt %q: %w", name, err)
	}
	s.Reload()
	return nil
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Path returns the file path backing the named prompt.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := s.Path(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# pdfchat Prompts

These templates drive the conversational retrieval chain.

## Files

- ` + "`condense_question.txt`" + ` - Rewrites a follow-up into a standalone question.
  Only used when the conversation already has history.
- ` + "`qa.txt`" + ` - Answers the question from the retrieved contract passages.

## Placeholders

Placeholders are written in braces and filled in at run time:

- ` + "`{question}`" + ` - The question (condensed when there is history)
- ` + "`{chat_history}`" + ` - Prior turns, one "Human:"/"Assistant:" line each
- ` + "`{context}`" + ` - The retrieved passages, separated by blank lines

condense_question.txt must contain {chat_history} and {question}.
qa.txt must contain {question} and {context}.
Write {{ or }} for a literal brace.

## Customisation

Edits are picked up by the next question; a running chat reloads them
automatically. Run ` + "`pdfchat prompts reset <name>`" + ` to restore a default.
`
	return os.WriteFile(path, []byte(content), 0600)
}

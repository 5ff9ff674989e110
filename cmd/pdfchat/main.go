// Command pdfchat answers questions about an ingested PDF contract.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/config/env"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/services"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := env.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var sessionStore driven.SessionStore
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("sessions will not be saved: %v", err)
		sessionStore = memory.NewSessionStore()
	} else {
		defer store.Close()
		sessionStore = store.SessionStore()
	}

	chat, closeChat, chatErr := buildChat(ctx, settingsService, promptStore, sessionStore)
	defer closeChat()

	svcs := cli.Services{
		Sessions:     services.NewSessionService(sessionStore),
		Settings:     settingsService,
		Prompts:      promptStore,
		ChatErr:      chatErr,
		WatchPrompts: promptWatch(promptStore),
	}
	if chat != nil {
		svcs.Chat = chat
	}

	cli.SetVersion(version)
	cli.SetServices(svcs)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// buildChat resolves settings against the environment and wires the chain's
// collaborators. Failures are returned as the reason chat is unavailable so
// that commands not needing the chain still run.
func buildChat(
	ctx context.Context,
	settingsService *services.SettingsService,
	prompts driven.PromptStore,
	sessions driven.SessionStore,
) (*services.ChatService, func(), error) {
	noop := func() {}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, noop, fmt.Errorf("load settings: %w", err)
	}
	if err := env.Resolve(settings, os.LookupEnv); err != nil {
		return nil, noop, err
	}

	collaborators, err := ai.Initialise(ctx, settings)
	if err != nil {
		return nil, noop, err
	}

	llm := services.NewRateLimitedLLM(collaborators.LLMService, settings.Chain.RequestsPerSecond)
	chat, err := services.NewChatService(services.ChainConfig{
		Index:       collaborators.VectorIndex,
		Embedder:    collaborators.EmbeddingService,
		QuestionLLM: llm,
		AnswerLLM:   llm,
		Model:       settings.Chain.QAModel,
		Temperature: settings.Chain.Temperature,
		K:           settings.Chain.K,
	}, prompts, sessions)
	if err != nil {
		collaborators.Close()
		if errors.Is(err, domain.ErrVectorIndexUnavailable) ||
			errors.Is(err, domain.ErrEmbeddingUnavailable) ||
			errors.Is(err, domain.ErrLLMUnavailable) {
			err = fmt.Errorf("%w (run 'pdfchat settings wizard')", err)
		}
		return nil, noop, err
	}
	return chat, collaborators.Close, nil
}

// promptWatch reloads edited prompt files while a long-running command is active.
func promptWatch(store *file.PromptStore) func(ctx context.Context, onReload func(name string)) {
	return func(ctx context.Context, onReload func(name string)) {
		// Loading once creates the directory and default files to watch.
		if _, err := store.Load(driven.PromptQA); err != nil {
			logger.Warn("prompt watcher disabled: %v", err)
			return
		}
		watcher, err := file.NewPromptWatcher(store.Dir(), store, onReload)
		if err != nil {
			logger.Warn("prompt watcher disabled: %v", err)
			return
		}
		defer watcher.Close()
		watcher.Run(ctx)
	}
}

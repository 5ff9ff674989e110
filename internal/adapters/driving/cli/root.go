package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// PromptManager is the prompt store as seen by the CLI: readable by the
// chain and editable on disk.
type PromptManager interface {
	driven.PromptStore

	// Reset restores the built-in text of a prompt.
	Reset(name string) error

	// Dir returns the directory holding the prompt files.
	Dir() string

	// Path returns the file backing a prompt.
	Path(name string) string
}

// Services holds the driving ports the commands operate on.
type Services struct {
	Chat     driving.ChatService
	Sessions driving.SessionService
	Settings driving.SettingsService
	Prompts  PromptManager

	// ChatErr explains why Chat is nil, when it is.
	ChatErr error

	// WatchPrompts, when set, reloads edited prompt files until ctx is done,
	// calling onReload with the name of each reloaded prompt.
	// Long-running commands start it in the background.
	WatchPrompts func(ctx context.Context, onReload func(name string))
}

var (
	chatService     driving.ChatService
	sessionService  driving.SessionService
	settingsService driving.SettingsService
	promptStore     PromptManager
	chatErr         error
	watchPrompts    func(ctx context.Context, onReload func(name string))
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pdfchat",
	Short: "Chat with a PDF contract",
	Long: `pdfchat answers questions about an ingested PDF contract.

Each question is answered from the passages of the contract most similar to it.
Follow-up questions are first rewritten into standalone questions using the
conversation so far.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output to stderr")
}

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	chatService = s.Chat
	sessionService = s.Sessions
	settingsService = s.Settings
	promptStore = s.Prompts
	chatErr = s.ChatErr
	watchPrompts = s.WatchPrompts
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// requireChat returns the chat service or explains why it is unavailable.
func requireChat() (driving.ChatService, error) {
	if chatService != nil {
		return chatService, nil
	}
	if chatErr != nil {
		return nil, errors.Join(errors.New("chat service not configured"), chatErr)
	}
	return nil, errors.New("chat service not configured")
}

// startPromptWatch runs the prompt watcher until the returned stop is called.
// onReload may be nil.
func startPromptWatch(ctx context.Context, onReload func(name string)) (stop func()) {
	if watchPrompts == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchPrompts(ctx, onReload)
	}()
	return func() {
		cancel()
		<-done
	}
}

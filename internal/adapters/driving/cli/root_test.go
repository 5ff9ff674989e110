package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	chat     *mockChatService
	sessions *mockSessionService
	settings *mockSettingsService
	prompts  *mockPromptManager
}

// setupTestServices installs mock services and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		chat: &mockChatService{
			answer: "The agreement runs for two years.",
			sources: []domain.Passage{{
				ID:       "p1",
				Text:     "This Agreement shall remain in effect for two (2) years.",
				Score:    0.92,
				Metadata: domain.PassageMetadata{Source: "contract.pdf", Page: 3},
			}},
		},
		sessions: &mockSessionService{sessions: map[string]*domain.Session{}},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
		prompts: &mockPromptManager{prompts: map[string]string{
			driven.PromptCondenseQuestion: "{chat_history} {question}",
			driven.PromptQA:               "{question} {context}",
		}},
	}

	SetServices(Services{
		Chat:     ts.chat,
		Sessions: ts.sessions,
		Settings: ts.settings,
		Prompts:  ts.prompts,
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

// resetFlags restores flag values and Changed state between executions,
// since cobra keeps both on the package-level commands.
func resetFlags() {
	askSession, askNew, askNoStream, askJSON, askSources = "", false, false, false, false
	retrieveJSON = false
	exportFormat = "json"
	chatSession, chatNoSave = "", false
	verbose = false

	for cmd, names := range map[*cobra.Command][]string{
		askCmd:           {"session", "new", "no-stream", "json", "sources"},
		retrieveCmd:      {"json"},
		sessionExportCmd: {"format"},
		chatCmd:          {"session", "no-save"},
	} {
		for _, name := range names {
			cmd.Flags().Lookup(name).Changed = false
		}
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "pdfchat", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"ask", "chat", "retrieve", "session", "settings", "prompts", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestRequireChat(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		chat, err := requireChat()
		require.NoError(t, err)
		assert.NotNil(t, chat)
	})

	t.Run("missing explains why", func(t *testing.T) {
		SetServices(Services{ChatErr: domain.ErrMissingIndexName})
		defer SetServices(Services{})

		_, err := requireChat()
		assert.ErrorIs(t, err, domain.ErrMissingIndexName)
		assert.Contains(t, err.Error(), "chat service not configured")
	})

	t.Run("missing without reason", func(t *testing.T) {
		SetServices(Services{})

		_, err := requireChat()
		assert.EqualError(t, err, "chat service not configured")
	})
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestStartPromptWatch(t *testing.T) {
	t.Run("no watcher is a no-op", func(t *testing.T) {
		SetServices(Services{})
		stop := startPromptWatch(context.Background(), nil)
		stop()
	})

	t.Run("watcher runs until stopped", func(t *testing.T) {
		started := make(chan struct{})
		var reloaded []string
		SetServices(Services{WatchPrompts: func(ctx context.Context, onReload func(string)) {
			onReload("qa")
			close(started)
			<-ctx.Done()
		}})
		defer SetServices(Services{})

		stop := startPromptWatch(context.Background(), func(name string) {
			reloaded = append(reloaded, name)
		})
		<-started
		stop()

		assert.Equal(t, []string{"qa"}, reloaded)
	})
}

func TestExecute_UnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	assert.Error(t, err)
}

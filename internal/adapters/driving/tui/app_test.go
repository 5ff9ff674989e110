package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{Chat: streamingChat("The contract renews annually.")}, "")
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// drive feeds the messages produced by cmd back into the app until no command remains.
func drive(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 1000, "command loop did not terminate")
		_, cmd = app.Update(cmd())
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(&Ports{Chat: &MockChatService{}}, "")

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{}, "")

	assert.ErrorIs(t, err, ErrInvalidPorts)
	assert.ErrorIs(t, err, ErrMissingChatService)
	assert.Nil(t, app)
}

func TestNewApp_WithSession(t *testing.T) {
	app, err := NewApp(&Ports{Chat: &MockChatService{}, Sessions: &MockSessionService{}}, "s1")

	require.NoError(t, err)
	assert.Equal(t, "s1", app.ChatView().SessionID())
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(&Ports{Chat: &MockChatService{}}, "")

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(&Ports{Chat: &MockChatService{}}, "")

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(&Ports{Chat: &MockChatService{}}, "")

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.True(t, app.ChatView().Ready())
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(&Ports{Chat: &MockChatService{}}, "")

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_QuitKeys(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyF1})
	drive(t, app, cmd)
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "new chat")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewChat, app.CurrentView())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyF1})
	drive(t, app, cmd)
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyF1})
	drive(t, app, cmd)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_AsksThroughChatView(t *testing.T) {
	app := newTestApp(t)

	app.ChatView().Input().SetValue("When does it renew?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drive(t, app, cmd)

	assert.Equal(t, []domain.ChatTurn{{
		Question: "When does it renew?",
		Answer:   "The contract renews annually.",
	}}, app.ChatView().History())
	assert.Contains(t, app.View(), "The contract renews annually.")
}

func TestApp_HelpIgnoresTyping(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	assert.Nil(t, cmd)
	assert.Equal(t, "", app.ChatView().Input().Value())
}

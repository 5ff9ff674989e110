package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{name: "quit", binding: km.Quit, keys: []string{"ctrl+c"}},
		{name: "help", binding: km.Help, keys: []string{"f1"}},
		{name: "send", binding: km.Send, keys: []string{"enter"}},
		{name: "cancel", binding: km.Cancel, keys: []string{"esc"}},
		{name: "new chat", binding: km.NewChat, keys: []string{"ctrl+n"}},
		{name: "sources", binding: km.Sources, keys: []string{"ctrl+s"}},
		{name: "scroll up", binding: km.ScrollUp, keys: []string{"pgup", "ctrl+u"}},
		{name: "scroll down", binding: km.ScrollDown, keys: []string{"pgdown", "ctrl+d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "send", help[0].Help().Desc)
	assert.Equal(t, "quit", help[3].Help().Desc)
}

func TestKeyMap_BusyHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.BusyHelp()

	require.Len(t, help, 2)
	assert.Equal(t, "cancel", help[0].Help().Desc)
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	require.Len(t, groups, 3)
	for _, group := range groups {
		assert.NotEmpty(t, group)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("pgup", km.ScrollUp))
	assert.True(t, Matches("ctrl+u", km.ScrollUp))
	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("", km.Send))
}

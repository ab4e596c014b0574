package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/forksync/config"
)

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SelectAll", "select_all"},
		{"PageUp", "page_up"},
		{"Up", "up"},
		{"A", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, camelToSnake(tt.input))
		})
	}
}

type NavKeys struct {
	Quit key.Binding
}

type testKeyMap struct {
	NavKeys
	SelectAll key.Binding
	Delete    key.Binding
	hidden    key.Binding
	Label     string
}

func newTestKeyMap() testKeyMap {
	return testKeyMap{
		NavKeys:   NavKeys{Quit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))},
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Delete:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		hidden:    key.NewBinding(key.WithKeys("h")),
		Label:     "unchanged",
	}
}

func TestApply(t *testing.T) {
	km := newTestKeyMap()

	unknown := Apply(&km, Overrides{
		"select_all": {"A", "ctrl+a"},
		"quit":       {"Q"},
		"hidden":     {"x"},
		"missing":    {"m"},
		"delete":     {},
	})

	assert.Equal(t, []string{"A", "ctrl+a"}, km.SelectAll.Keys())
	assert.Equal(t, "A/ctrl+a", km.SelectAll.Help().Key)
	assert.Equal(t, "select all", km.SelectAll.Help().Desc)
	assert.Equal(t, []string{"Q"}, km.Quit.Keys())
	assert.Equal(t, []string{"D"}, km.Delete.Keys())
	assert.Equal(t, []string{"h"}, km.hidden.Keys())
	assert.Equal(t, "unchanged", km.Label)
	assert.Equal(t, []string{"delete", "hidden", "missing"}, unknown)
}

func TestApplyIgnoresNonPointers(t *testing.T) {
	km := newTestKeyMap()
	assert.Nil(t, Apply(km, Overrides{"quit": {"Q"}}))
	assert.Nil(t, Apply(&km, nil))
	assert.Equal(t, []string{"q"}, km.Quit.Keys())
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte("keys:\n  select_all: [A]\n  refresh: [F5, R]\n"), config.FormatYAML)
	require.NoError(t, err)

	o, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, Overrides{"select_all": {"A"}, "refresh": {"F5", "R"}}, o)

	o, err = FromConfig(config.Default())
	require.NoError(t, err)
	assert.Nil(t, o)

	o, err = FromConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, o)
}

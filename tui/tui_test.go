package tui

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestColorProfile(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	assert.Equal(t, termenv.Ascii, ColorProfile(env(map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"})))
	assert.Equal(t, termenv.TrueColor, ColorProfile(env(map[string]string{"CLICOLOR_FORCE": "1"})))
	assert.Equal(t, termenv.TrueColor, ColorProfile(env(map[string]string{"COLORTERM": "truecolor"})))
}

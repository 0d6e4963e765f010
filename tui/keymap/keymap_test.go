package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	km := Default()

	assert.Equal(t, []string{"k", "up"}, km.Up.Keys())
	assert.Equal(t, []string{"ctrl+s"}, km.Save.Keys())
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")}, km.EditText))
}

func TestLoadOverrides(t *testing.T) {
	km := Load(map[string][]string{
		"edit_text": {"i", "E"},
		"SAVE":      {"ctrl+x"},
		"unknown":   {"z"},
		"quit":      nil,
	})

	assert.Equal(t, []string{"i", "E"}, km.EditText.Keys())
	assert.Equal(t, "edit text", km.EditText.Help().Desc)
	assert.Equal(t, "i/E", km.EditText.Help().Key)
	assert.Equal(t, []string{"ctrl+x"}, km.Save.Keys())
	assert.Equal(t, []string{"q", "ctrl+c"}, km.Quit.Keys())
}

func TestSectionsCoverEveryBinding(t *testing.T) {
	km := Default()
	count := 0
	for _, s := range km.Sections() {
		assert.False(t, s.IsEmpty(), s.Name)
		count += len(s.Bindings)
	}
	// Confirm and Cancel only apply inside prompts.
	assert.Equal(t, len(km.byName()), count)
}

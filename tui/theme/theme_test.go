package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewModes(t *testing.T) {
	assert.Equal(t, "dark", New("dark").Name)
	assert.Equal(t, "light", New(" Light ").Name)
	assert.Equal(t, "terminal", New("terminal").Name)
	assert.Contains(t, []string{"dark", "light"}, New("auto").Name)
	assert.Contains(t, []string{"dark", "light"}, New("neon").Name)
}

func TestRenderStatusUnknownIsPlain(t *testing.T) {
	assert.Equal(t, "text", New("dark").RenderStatus("other", "text"))
}

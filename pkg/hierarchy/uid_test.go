package hierarchy

import (
	"testing"

	"github.com/grovetools/reqs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUID(t *testing.T) {
	tests := []struct {
		in     string
		uid    UID
		prefix Prefix
		number int
	}{
		{"REQ-001", "REQ-001", "REQ", 1},
		{"  TST-042 ", "TST-042", "TST", 42},
		{"SYS7", "SYS7", "SYS", 7},
		{"LLR_12", "LLR_12", "LLR", 12},
		{"a.3", "a.3", "a", 3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			uid, prefix, n, err := ParseUID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.uid, uid)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.number, n)
		})
	}
}

func TestParseUIDInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "REQ", "-001", "001", "RE Q-1"} {
		t.Run(in, func(t *testing.T) {
			_, _, _, err := ParseUID(in)
			assert.True(t, errors.Is(err, errors.ErrCodeValidation), "got %v", err)
		})
	}
}

func TestFormatUID(t *testing.T) {
	assert.Equal(t, UID("REQ-007"), FormatUID("REQ", "-", 3, 7))
	assert.Equal(t, UID("SYS1234"), FormatUID("SYS", "", 3, 1234))
	assert.Equal(t, Prefix("REQ"), UID("REQ-007").Prefix())
	assert.Equal(t, Prefix(""), UID("bogus").Prefix())
}

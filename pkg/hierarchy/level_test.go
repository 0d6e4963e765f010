package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		out     string
		depth   int
		heading bool
	}{
		{"1", "1", 1, false},
		{"1.2.3", "1.2.3", 3, false},
		{"1.0", "1.0", 1, true},
		{"2.1.0", "2.1.0", 2, true},
		{"1.10", "1.10", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.out, l.String())
			assert.Equal(t, tt.depth, l.Depth())
			assert.Equal(t, tt.heading, l.Heading())
		})
	}

	for _, bad := range []string{"", "a", "1..2", "0", "1.0.2", "-1"} {
		_, err := ParseLevel(bad)
		assert.Error(t, err, bad)
	}
}

func TestLevelMoves(t *testing.T) {
	l := MustLevel("1.2")
	assert.Equal(t, "1.3", l.Next().String())
	assert.Equal(t, "1.2.1", l.Indent().String())

	up, ok := MustLevel("1.2.3").Dedent()
	require.True(t, ok)
	assert.Equal(t, "1.3", up.String())

	_, ok = MustLevel("4").Dedent()
	assert.False(t, ok)

	assert.Equal(t, "1.2.0", l.WithHeading(true).String())
	assert.Equal(t, "1.2", l.WithHeading(true).WithHeading(false).String())
}

func TestLevelCompare(t *testing.T) {
	ordered := []string{"1.0", "1", "1.1", "1.1.1", "1.2", "2.0", "2", "10"}
	for i := 0; i+1 < len(ordered); i++ {
		a, b := MustLevel(ordered[i]), MustLevel(ordered[i+1])
		assert.Equal(t, -1, a.Compare(b), "%s < %s", a, b)
		assert.Equal(t, 1, b.Compare(a), "%s > %s", b, a)
	}
	assert.Equal(t, 0, MustLevel("1.2").Compare(MustLevel("1.2")))
}

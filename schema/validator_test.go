package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decode(t *testing.T, src string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(src), &out))
	return out
}

func TestItemValidator(t *testing.T) {
	v, err := NewItemValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{
			name: "full item",
			src: `
active: true
derived: false
level: 1.2
links:
- REQ-001: abc123
- REQ-002: null
normative: true
ref: ''
text: |
  The system shall log.
`,
		},
		{name: "string level", src: "level: '1.2.3'\ntext: x\n"},
		{name: "extended attributes allowed", src: "text: x\nowner: sam\n"},
		{name: "active must be bool", src: "active: maybe\n", wantErr: true},
		{name: "bad level string", src: "level: 'one'\n", wantErr: true},
		{name: "links must be a list", src: "links: REQ-001\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(decode(t, tt.src))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocumentValidator(t *testing.T) {
	v, err := NewDocumentValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(decode(t, "settings:\n  prefix: REQ\n  digits: 3\n  sep: '-'\n")))
	assert.Error(t, v.Validate(decode(t, "settings:\n  digits: 3\n")))
	assert.Error(t, v.Validate(decode(t, "other: 1\n")))
}

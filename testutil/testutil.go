package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Sample project layout written by WriteProject:
//
//	reqs/         REQ (root)  REQ-001 1, REQ-002 1.1, REQ-003 2 (heading 2.0)
//	reqs/tests/   TST -> REQ  TST-001 1 links REQ-001, TST-002 1.1
const (
	RootPrefix  = "REQ"
	ChildPrefix = "TST"
)

var sampleFiles = map[string]string{
	"reqs/.doorstop.yml": `settings:
  digits: 3
  prefix: REQ
  sep: '-'
`,
	"reqs/REQ-001.yml": `active: true
derived: false
header: ''
level: 1
links: []
normative: true
ref: ''
reviewed: null
text: |
  The system shall load projects.
`,
	"reqs/REQ-002.yml": `active: true
derived: false
header: ''
level: 1.1
links: []
normative: true
ref: 'src/load.go'
reviewed: null
owner: sam
text: |
  The system shall report parse errors.
`,
	"reqs/REQ-003.yml": `active: true
derived: false
header: 'Saving'
level: '2.0'
links: []
normative: false
ref: ''
reviewed: null
text: ''
`,
	"reqs/tests/.doorstop.yml": `settings:
  digits: 3
  parent: REQ
  prefix: TST
  sep: '-'
`,
	"reqs/tests/TST-001.yml": `active: true
derived: false
level: 1
links:
- REQ-001: null
normative: true
ref: ''
text: |
  Load the sample project.
`,
	"reqs/tests/TST-002.yml": `active: true
level: 1.1
links: []
normative: true
text: |
  Load a broken project.
`,
}

// WriteProject writes the sample project below dir and returns its root.
func WriteProject(t *testing.T, dir string) string {
	t.Helper()

	for rel, content := range sampleFiles {
		WriteFile(t, dir, rel, content)
	}
	return filepath.Join(dir, "reqs")
}

// WriteFile writes content to dir/rel, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ReadFile returns the content of dir/rel.
func ReadFile(t *testing.T, dir, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	return string(data)
}

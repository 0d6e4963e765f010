package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/state"
	"github.com/grovetools/reqs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupProject writes the sample project and a reqs.yml naming it.
func setupProject(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	testutil.WriteProject(t, dir)
	configPath = testutil.WriteFile(t, dir, "reqs.yml", "version: \"1.0\"\nproject: reqs\n")
	return dir, configPath
}

// run executes the root command with --config and returns stdout.
func run(t *testing.T, configPath, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func loadTree(t *testing.T, dir string) *hierarchy.Tree {
	t.Helper()
	tree, err := hierarchy.Load(filepath.Join(dir, "reqs"))
	require.NoError(t, err)
	return tree
}

func findItem(t *testing.T, dir, uid string) *hierarchy.Item {
	t.Helper()
	item, err := loadTree(t, dir).FindItem(hierarchy.UID(uid))
	require.NoError(t, err)
	return item
}

func TestShowListsDocuments(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := run(t, cfg, "", "show")
	require.NoError(t, err)
	for _, uid := range []string{"REQ-001", "REQ-002", "REQ-003", "TST-001", "TST-002"} {
		assert.Contains(t, out, uid)
	}

	out, err = run(t, cfg, "", "show", "TST")
	require.NoError(t, err)
	assert.Contains(t, out, "TST-001")
	assert.NotContains(t, out, "REQ-002")
}

func TestShowJSON(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := run(t, cfg, "", "show", "--json")
	require.NoError(t, err)
	var items []itemJSON
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 5)
	assert.Equal(t, "REQ-001", items[0].UID)

	out, err = run(t, cfg, "", "show", "--json", "--item", "REQ-001")
	require.NoError(t, err)
	var item itemJSON
	require.NoError(t, json.Unmarshal([]byte(out), &item))
	assert.Equal(t, []string{"TST-001"}, item.LinkedFrom)

	out, err = run(t, cfg, "", "show", "--json", "--item", "REQ-002")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &item))
	assert.Equal(t, "src/load.go", item.Ref)
	assert.Equal(t, "sam", item.Attributes["owner"])
}

func TestShowUnknownItem(t *testing.T) {
	_, cfg := setupProject(t)

	_, err := run(t, cfg, "", "show", "--item", "REQ-042")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestCheckReportsWarnings(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := run(t, cfg, "", "check", "--json")
	require.NoError(t, err)
	var issues []Issue
	require.NoError(t, json.Unmarshal([]byte(out), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{UID: "TST-002", Severity: severityWarning, Message: "no links to REQ"}, issues[0])
}

func TestCheckFailsOnMissingTarget(t *testing.T) {
	dir, cfg := setupProject(t)
	testutil.WriteFile(t, dir, "reqs/tests/TST-002.yml", `active: true
level: 1.1
links:
- REQ-009: null
normative: true
text: |
  Load a broken project.
`)

	out, err := run(t, cfg, "", "check")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	assert.Contains(t, out, "TST-002: links to missing item REQ-009")
}

func TestItemSetText(t *testing.T) {
	dir, cfg := setupProject(t)

	_, err := run(t, cfg, "", "item", "set-text", "REQ-001", "The system shall open projects.")
	require.NoError(t, err)
	assert.Equal(t, "The system shall open projects.", strings.TrimSpace(findItem(t, dir, "REQ-001").Text()))

	_, err = run(t, cfg, "Read from stdin.\n", "item", "set-text", "REQ-002")
	require.NoError(t, err)
	assert.Equal(t, "Read from stdin.", strings.TrimSpace(findItem(t, dir, "REQ-002").Text()))
}

func TestItemSetFlagAndAttr(t *testing.T) {
	dir, cfg := setupProject(t)

	_, err := run(t, cfg, "", "item", "set-flag", "REQ-002", "derived", "true")
	require.NoError(t, err)
	assert.True(t, findItem(t, dir, "REQ-002").Derived())

	_, err = run(t, cfg, "", "item", "set-flag", "REQ-002", "derived", "maybe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	_, err = run(t, cfg, "", "item", "set-attr", "REQ-002", "owner", "kim")
	require.NoError(t, err)
	v, ok := findItem(t, dir, "REQ-002").Attribute("owner")
	require.True(t, ok)
	assert.Equal(t, "kim", v)

	_, err = run(t, cfg, "", "item", "set-attr", "REQ-002", "owner")
	require.NoError(t, err)
	_, ok = findItem(t, dir, "REQ-002").Attribute("owner")
	assert.False(t, ok)
}

func TestItemAddAndRemove(t *testing.T) {
	dir, cfg := setupProject(t)

	out, err := run(t, cfg, "", "item", "add", "TST")
	require.NoError(t, err)
	assert.Contains(t, out, "Added TST-003")

	doc, err := loadTree(t, dir).FindDocument("TST")
	require.NoError(t, err)
	assert.Len(t, doc.Items(), 3)

	_, err = run(t, cfg, "", "item", "remove", "TST-003")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "reqs", "tests", "TST-003.yml"))
}

func TestItemIndent(t *testing.T) {
	dir, cfg := setupProject(t)

	_, err := run(t, cfg, "", "item", "indent", "TST-002", "--delta", "-1")
	require.NoError(t, err)
	assert.Equal(t, "2", findItem(t, dir, "TST-002").Level().String())
}

func TestLinkAddAndRemove(t *testing.T) {
	dir, cfg := setupProject(t)

	_, err := run(t, cfg, "", "link", "add", "TST-002", "REQ-002")
	require.NoError(t, err)
	assert.Equal(t, []hierarchy.UID{"REQ-002"}, findItem(t, dir, "TST-002").Links())

	_, err = run(t, cfg, "", "link", "remove", "TST-002", "REQ-002")
	require.NoError(t, err)
	assert.Empty(t, findItem(t, dir, "TST-002").Links())
}

func TestFailedEditLeavesFilesUntouched(t *testing.T) {
	dir, cfg := setupProject(t)
	before := testutil.ReadFile(t, dir, "reqs/tests/TST-001.yml")

	_, err := run(t, cfg, "", "link", "add", "TST-001", "REQ-002", "REQ-042")
	require.Error(t, err)
	assert.Equal(t, before, testutil.ReadFile(t, dir, "reqs/tests/TST-001.yml"))
}

func TestApplySavesWhenAllEditsSucceed(t *testing.T) {
	dir, cfg := setupProject(t)
	edits := testutil.WriteFile(t, dir, "edits.yml", `edits:
  - action: set-text
    uid: REQ-001
    text: The system shall open projects.
  - action: set-flag
    uid: REQ-002
    flag: derived
    value: true
  - action: add-link
    uid: TST-002
    target: REQ-002
`)

	out, err := run(t, cfg, "", "apply", edits, "--json")
	require.NoError(t, err)
	var results []applyResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.OK, r.Action)
	}

	assert.Equal(t, "The system shall open projects.", strings.TrimSpace(findItem(t, dir, "REQ-001").Text()))
	assert.True(t, findItem(t, dir, "REQ-002").Derived())
	assert.Equal(t, []hierarchy.UID{"REQ-002"}, findItem(t, dir, "TST-002").Links())
}

func TestApplyFailureSavesNothing(t *testing.T) {
	dir, cfg := setupProject(t)
	before := testutil.ReadFile(t, dir, "reqs/REQ-001.yml")

	out, err := run(t, cfg, `edits:
  - action: set-text
    uid: REQ-001
    text: Changed.
  - action: set-text
    uid: REQ-042
    text: Missing.
`, "apply", "-")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.Contains(t, out, "Nothing saved")
	assert.Equal(t, before, testutil.ReadFile(t, dir, "reqs/REQ-001.yml"))
}

func TestApplyRejectsUnknownAction(t *testing.T) {
	_, cfg := setupProject(t)

	_, err := run(t, cfg, "edits:\n  - action: explode\n", "apply", "-")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestEditToAction(t *testing.T) {
	action, err := Edit{Action: "set-attr", UID: "REQ-002", Name: "priority", Value: 2}.toAction()
	require.NoError(t, err)
	assert.Equal(t, state.SetExtendedAttributeValue{UID: "REQ-002", Name: "priority", Value: "2"}, action)

	action, err = Edit{Action: "indent", UID: "TST-002"}.toAction()
	require.NoError(t, err)
	assert.Equal(t, state.Reindent{UID: "TST-002", Delta: 1}, action)

	_, err = Edit{Action: "set-flag", UID: "REQ-002", Flag: "shiny", Value: true}.toAction()
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestConfigShowAndSchema(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := run(t, cfg, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Source: "+cfg)
	assert.Contains(t, out, "theme: auto")

	out, err = run(t, cfg, "", "config", "schema")
	require.NoError(t, err)
	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
}

func TestLogsPicksComponentFile(t *testing.T) {
	dir, cfg := setupProject(t)
	testutil.WriteFile(t, dir, ".reqs/logs/store-2026-01-02.log", "first\nsecond\nthird\n")
	testutil.WriteFile(t, dir, ".reqs/logs/editor-2026-01-02.log", `{"level":"info","msg":"opened","component":"editor","time":"2026-01-02T10:11:12Z","project":"reqs"}`+"\n")

	out, err := run(t, cfg, "", "logs", "store", "--tail", "2")
	require.NoError(t, err)
	assert.Equal(t, "second\nthird\n", out)

	out, err = run(t, cfg, "", "logs", "editor")
	require.NoError(t, err)
	assert.Contains(t, out, "10:11:12")
	assert.Contains(t, out, "opened")
	assert.Contains(t, out, "project")

	_, err = run(t, cfg, "", "logs", "watch")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

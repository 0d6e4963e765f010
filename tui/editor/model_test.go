package editor

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/state"
	"github.com/grovetools/reqs/testutil"
	"github.com/grovetools/reqs/tui/theme"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T) (Model, *state.Store, string) {
	t.Helper()

	dir := t.TempDir()
	root := testutil.WriteProject(t, dir)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	store := state.NewStore(state.Seed(dir), state.WithLogger(entry))
	require.True(t, store.Dispatch(state.SetProjectPath{Path: root}).OK)
	require.True(t, store.Dispatch(state.LoadProject{}).OK)

	m := New(store, WithLogger(entry), WithTheme(theme.New("terminal")))
	t.Cleanup(m.Close)
	return m, store, dir
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = update(m, keyMsg(k))
	}
	return m, cmd
}

func selectItem(t *testing.T, store *state.Store, prefix hierarchy.Prefix, uid hierarchy.UID) {
	t.Helper()
	require.True(t, store.Dispatch(state.SelectDocument{Prefix: prefix}).OK)
	require.True(t, store.Dispatch(state.SelectItems{UIDs: []hierarchy.UID{uid}}).OK)
}

func itemOf(t *testing.T, store *state.Store, uid hierarchy.UID) *hierarchy.Item {
	t.Helper()
	item, err := store.State().Tree().FindItem(uid)
	require.NoError(t, err)
	return item
}

func TestViewsObserveStore(t *testing.T) {
	m, store, _ := newEditor(t)

	require.Len(t, m.documents.docs, 2)
	assert.Equal(t, hierarchy.Prefix("REQ"), m.documents.active)
	require.Len(t, m.items.items, 3)
	assert.Equal(t, hierarchy.UID("REQ-001"), m.items.items[0].UID())

	require.True(t, store.Dispatch(state.SelectDocument{Prefix: "TST"}).OK)

	assert.Equal(t, hierarchy.Prefix("TST"), m.documents.active)
	require.Len(t, m.items.items, 2)
	assert.Equal(t, hierarchy.UID("TST-001"), m.items.items[0].UID())
}

func TestDocumentsPaneMovesSelection(t *testing.T) {
	m, store, _ := newEditor(t)
	m.focus = paneDocuments

	m, _ = press(m, "j")
	assert.Equal(t, hierarchy.Prefix("TST"), store.State().SelectedDocument())

	m, _ = press(m, "k")
	assert.Equal(t, hierarchy.Prefix("REQ"), store.State().SelectedDocument())
}

func TestConfirmSelectsCursorItem(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, "j", "enter")

	assert.Equal(t, hierarchy.UID("REQ-002"), store.State().Principal())
	assert.Equal(t, 1, m.items.cursor)
}

func TestSelectTogglesMembership(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, " ", " ")
	assert.Equal(t, []hierarchy.UID{"REQ-001", "REQ-002"}, store.State().SelectedItems())
	assert.Equal(t, hierarchy.UID("REQ-001"), store.State().Principal())

	m, _ = press(m, "k", " ")
	assert.Equal(t, []hierarchy.UID{"REQ-001"}, store.State().SelectedItems())
	assert.True(t, m.items.selected["REQ-001"])
	assert.False(t, m.items.selected["REQ-002"])
}

func TestToggleFlagNeedsPrincipal(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, "n")
	assert.Equal(t, "No item selected", m.status)
	assert.False(t, store.State().PendingChange())

	m, _ = press(m, "enter", "n")
	assert.False(t, itemOf(t, store, "REQ-001").Normative())
	assert.True(t, store.State().PendingChange())
	assert.Empty(t, m.status)
}

func TestEditRefThroughInput(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, "enter", "r")
	require.Equal(t, modeRef, m.mode)
	assert.Equal(t, hierarchy.UID("REQ-001"), m.target)

	m, _ = press(m, "src/x.go", "enter")

	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "src/x.go", itemOf(t, store, "REQ-001").Ref())
}

func TestCancelDiscardsInput(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, "enter", "r", "src/x.go", "esc")

	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "", itemOf(t, store, "REQ-001").Ref())
	assert.False(t, store.State().PendingChange())
}

func TestEditTextCommitsOnSave(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, "enter", "e")
	require.Equal(t, modeText, m.mode)
	assert.Contains(t, m.text.Value(), "The system shall load projects.")

	m.text.SetValue("Load projects from disk.\nReport progress.")
	m, _ = press(m, "ctrl+s")

	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "Load projects from disk.\nReport progress.", itemOf(t, store, "REQ-001").Text())
}

func TestAttributeEditing(t *testing.T) {
	m, store, _ := newEditor(t)

	// Without a name the value key asks for one first.
	m, _ = press(m, "enter", "x")
	require.Equal(t, modeAttributeName, m.mode)
	m, _ = press(m, "owner", "enter")
	assert.Equal(t, "owner", store.State().ExtendedAttribute())

	m, _ = press(m, "x")
	require.Equal(t, modeAttributeValue, m.mode)
	m, _ = press(m, "kim", "enter")

	v, ok := itemOf(t, store, "REQ-001").Attribute("owner")
	require.True(t, ok)
	assert.Equal(t, "kim", v)
}

func TestFilterIsLiveAndCancelRestores(t *testing.T) {
	m, store, _ := newEditor(t)
	selectItem(t, store, "TST", "TST-001")

	m, _ = press(m, "/")
	require.Equal(t, modeFilter, m.mode)
	assert.Equal(t, paneLinks, m.focus)

	m, _ = press(m, "zzz")
	assert.Equal(t, "zzz", store.State().LinkFilter())
	assert.Empty(t, m.links.links)

	m, _ = press(m, "esc")
	assert.Equal(t, "", store.State().LinkFilter())
	assert.Equal(t, []hierarchy.UID{"REQ-001"}, m.links.links)
}

func TestFollowLinkSelectsTarget(t *testing.T) {
	m, store, _ := newEditor(t)
	selectItem(t, store, "TST", "TST-001")
	m.focus = paneLinks

	m, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, hierarchy.Prefix("REQ"), store.State().SelectedDocument())
	assert.Equal(t, paneItems, m.focus)

	m, _ = update(m, cmd())

	assert.Equal(t, hierarchy.UID("REQ-001"), store.State().Principal())
	assert.Equal(t, 0, m.items.cursor)
}

func TestLinkEditing(t *testing.T) {
	m, store, _ := newEditor(t)
	selectItem(t, store, "TST", "TST-002")

	m, _ = press(m, "l", "REQ-002", "enter")
	assert.Equal(t, []hierarchy.UID{"REQ-002"}, itemOf(t, store, "TST-002").Links())

	m.focus = paneLinks
	m, _ = press(m, "L")
	assert.Empty(t, itemOf(t, store, "TST-002").Links())
	assert.Contains(t, m.status, "Removed 1 link")
}

func TestFailedActionShowsError(t *testing.T) {
	m, store, _ := newEditor(t)
	selectItem(t, store, "TST", "TST-002")

	m, _ = press(m, "l", "NOPE-9", "enter")

	assert.Equal(t, "error", m.statusKind)
	assert.Contains(t, m.status, "NOPE-9")
	assert.False(t, store.State().PendingChange())
}

func TestStructuralKeys(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, "o")
	principal := store.State().Principal()
	require.NotEmpty(t, principal)
	assert.Len(t, m.items.items, 4)
	assert.Equal(t, principal, m.items.items[m.items.cursor].UID())

	m, _ = press(m, "D")
	require.Equal(t, modeConfirmRemove, m.mode)
	m, _ = press(m, "y")

	assert.Len(t, m.items.items, 3)
	_, err := store.State().Tree().FindItem(principal)
	assert.Error(t, err)
}

func TestIndentKeys(t *testing.T) {
	m, store, _ := newEditor(t)
	selectItem(t, store, "TST", "TST-002")

	m, _ = press(m, "<")
	assert.Equal(t, "2", itemOf(t, store, "TST-002").Level().String())

	_, _ = press(m, ">")
	assert.Equal(t, "1.1", itemOf(t, store, "TST-002").Level().String())
}

func TestQuitWithPendingNeedsConfirmation(t *testing.T) {
	m, store, _ := newEditor(t)

	m, _ = press(m, "enter", "d")
	require.True(t, store.State().PendingChange())

	m, cmd := press(m, "q")
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "Unsaved changes")

	_, cmd = press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestSaveClearsPending(t *testing.T) {
	m, store, dir := newEditor(t)
	marker := &countingMarker{}
	m.marker = marker

	m, _ = press(m, "enter", "d", "ctrl+s")

	assert.False(t, store.State().PendingChange())
	assert.Equal(t, 1, marker.n)
	assert.Equal(t, "Saved", m.status)
	assert.Contains(t, testutil.ReadFile(t, dir, "reqs/REQ-001.yml"), "derived: true")
}

type countingMarker struct{ n int }

func (c *countingMarker) MarkSelfWrite() { c.n++ }

func TestExternalChangeReloadsAndRestoresSelection(t *testing.T) {
	m, store, dir := newEditor(t)
	selectItem(t, store, "REQ", "REQ-002")

	testutil.WriteFile(t, dir, "reqs/REQ-002.yml", "active: true\nlevel: 1.1\nlinks: []\ntext: Changed on disk.\n")

	m, cmd := update(m, fileChangedMsg{Paths: []string{"REQ-002.yml"}})
	require.NotNil(t, cmd)
	assert.Equal(t, "Changed on disk.", itemOf(t, store, "REQ-002").Text())

	m, cmd = update(m, cmd())
	require.NotNil(t, cmd)
	_, _ = update(m, cmd())

	assert.Equal(t, hierarchy.UID("REQ-002"), store.State().Principal())
}

func TestExternalChangeKeepsPendingEdits(t *testing.T) {
	m, store, dir := newEditor(t)
	selectItem(t, store, "REQ", "REQ-001")
	require.True(t, store.Dispatch(state.SetItemText{UID: "REQ-001", Text: "mine"}).OK)

	testutil.WriteFile(t, dir, "reqs/REQ-002.yml", "active: true\nlevel: 1.1\nlinks: []\ntext: Changed on disk.\n")
	m, cmd := update(m, fileChangedMsg{Paths: []string{"REQ-002.yml"}})

	assert.Nil(t, cmd)
	assert.Equal(t, "warning", m.statusKind)
	assert.Equal(t, "mine", itemOf(t, store, "REQ-001").Text())
}

func TestCloseUnregistersViews(t *testing.T) {
	m, store, _ := newEditor(t)
	m.Close()

	require.True(t, store.Dispatch(state.SelectDocument{Prefix: "TST"}).OK)

	assert.Equal(t, hierarchy.Prefix("REQ"), m.documents.active)
}

func TestViewRendersPanes(t *testing.T) {
	m, store, _ := newEditor(t)
	selectItem(t, store, "TST", "TST-001")

	m, _ = update(m, tea.WindowSizeMsg{Width: 140, Height: 40})
	view := m.View()

	for _, want := range []string{"Documents", "Items", "Detail", "Links", "TST-001", "Linked from"} {
		assert.Contains(t, view, want)
	}

	m, _ = press(m, "?")
	assert.Contains(t, m.View(), "save")
}

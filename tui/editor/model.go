// Package editor is the interactive requirements editor. Every view is a
// store observer and every edit is a dispatched action.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/pkg/watch"
	"github.com/grovetools/reqs/state"
	"github.com/grovetools/reqs/tui/keymap"
	"github.com/grovetools/reqs/tui/theme"
	"github.com/sirupsen/logrus"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeText
	modeRef
	modeAttributeName
	modeAttributeValue
	modeFilter
	modeLinkTarget
	modeConfirmRemove
)

func (m inputMode) prompt() string {
	switch m {
	case modeText:
		return "text"
	case modeRef:
		return "ref"
	case modeAttributeName:
		return "attribute"
	case modeAttributeValue:
		return "value"
	case modeFilter:
		return "filter"
	case modeLinkTarget:
		return "link to"
	}
	return ""
}

// dispatchMsg carries a follow-up action to the next Update.
type dispatchMsg struct{ action state.Action }

// restoreMsg reselects what was selected before a reload, dropping ids that
// no longer exist.
type restoreMsg struct {
	document hierarchy.Prefix
	items    []hierarchy.UID
}

// fileChangedMsg reports project files changed outside the editor.
type fileChangedMsg watch.Event

func follow(action state.Action) tea.Cmd {
	return func() tea.Msg { return dispatchMsg{action: action} }
}

// SelfWriteMarker is told before the editor writes project files, so the
// writes are not mistaken for external changes.
type SelfWriteMarker interface {
	MarkSelfWrite()
}

// Model is the bubbletea model of the editor.
type Model struct {
	store  *state.Store
	keys   keymap.Editor
	theme  *theme.Theme
	help   help.Model
	logger *logrus.Entry
	marker SelfWriteMarker

	documents *documentsPanel
	items     *itemsPanel
	links     *linksPanel
	detail    *detailPanel
	removers  []func()

	focus      pane
	mode       inputMode
	input      textinput.Model
	text       textarea.Model
	target     hierarchy.UID
	prevFilter string
	removing   []hierarchy.UID

	status     string
	statusKind string
	// discard names the binding that must be pressed again to drop
	// unsaved edits.
	discard string

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

func WithKeys(k keymap.Editor) Option { return func(m *Model) { m.keys = k } }

func WithTheme(t *theme.Theme) Option { return func(m *Model) { m.theme = t } }

func WithLogger(l *logrus.Entry) Option { return func(m *Model) { m.logger = l } }

func WithSelfWriteMarker(w SelfWriteMarker) Option { return func(m *Model) { m.marker = w } }

// New creates the editor for store and registers its views as observers.
// Call Close to unregister them.
func New(store *state.Store, opts ...Option) Model {
	m := Model{
		store:     store,
		keys:      keymap.Default(),
		theme:     theme.DefaultTheme,
		help:      help.New(),
		logger:    logrus.NewEntry(logrus.StandardLogger()),
		documents: &documentsPanel{},
		items:     &itemsPanel{},
		links:     &linksPanel{},
		detail:    newDetailPanel(),
		focus:     paneItems,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.input = textinput.New()
	m.input.CharLimit = 512
	m.text = textarea.New()
	m.text.ShowLineNumbers = false

	views := []func(state.State){m.documents.observe, m.items.observe, m.links.observe, m.detail.observe}
	for _, observe := range views {
		observe := observe
		m.removers = append(m.removers, store.AddObserver(func(s *state.Store) {
			observe(s.State())
		}))
		observe(store.State())
	}
	return m
}

// Close unregisters the views from the store.
func (m Model) Close() {
	for _, remove := range m.removers {
		remove()
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.text.SetWidth(msg.Width - 4)
		m.text.SetHeight(max(3, msg.Height/3))
		m.input.Width = msg.Width - 20
		return m, nil

	case dispatchMsg:
		m.dispatch(msg.action)
		return m, nil

	case restoreMsg:
		cmd := m.restore(msg)
		return m, cmd

	case fileChangedMsg:
		s := m.store.State()
		if !s.HasProject() {
			return m, nil
		}
		if s.PendingChange() {
			m.setStatus("warning", fmt.Sprintf("%d file(s) changed on disk; unsaved edits kept", len(msg.Paths)))
			return m, nil
		}
		m.logger.WithField("paths", msg.Paths).Debug("Reloading after external change")
		cmd := m.reload()
		return m, cmd

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// dispatch sends action to the store and reports failures in the status
// line.
func (m *Model) dispatch(action state.Action) bool {
	res := m.store.Dispatch(action)
	if !res.OK {
		m.setStatus("error", describe(res.Errors))
		m.logger.WithError(res.Err()).WithField("action", state.Name(action)).Debug("Action failed")
		return false
	}
	return true
}

func (m *Model) setStatus(kind, text string) {
	m.statusKind = kind
	m.status = text
}

func describe(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	if len(parts) > 2 {
		return fmt.Sprintf("%s (and %d more)", parts[0], len(parts)-1)
	}
	return strings.Join(parts, "; ")
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.store.State()
	armed := m.discard
	m.discard = ""
	if m.help.ShowAll {
		m.help.ShowAll = false
		return m, nil
	}
	m.setStatus("", "")

	switch {
	case key.Matches(msg, m.keys.Quit):
		if s.PendingChange() && armed != "quit" {
			m.armDiscard("quit")
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true

	case key.Matches(msg, m.keys.FocusNext):
		m.focus = (m.focus + 1) % paneCount
	case key.Matches(msg, m.keys.FocusPrev):
		m.focus = (m.focus + paneCount - 1) % paneCount

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Top):
		m.move(-1 << 20)
	case key.Matches(msg, m.keys.Bottom):
		m.move(1 << 20)

	case key.Matches(msg, m.keys.Confirm):
		cmd := m.activate()
		return m, cmd
	case key.Matches(msg, m.keys.Select):
		m.toggleSelection(s)
	case key.Matches(msg, m.keys.SelectNone):
		if m.focus == paneLinks {
			m.dispatch(state.SelectLinks{Deselect: s.SelectedLinks()})
		} else {
			m.dispatch(state.SelectItems{})
		}
	case key.Matches(msg, m.keys.Filter):
		m.prevFilter = s.LinkFilter()
		m.focus = paneLinks
		cmd := m.openInput(modeFilter, "", s.LinkFilter())
		return m, cmd

	case key.Matches(msg, m.keys.EditText):
		if item, ok := m.principal(s); ok {
			cmd := m.openText(item)
			return m, cmd
		}
	case key.Matches(msg, m.keys.EditRef):
		if item, ok := m.principal(s); ok {
			cmd := m.openInput(modeRef, item.UID(), item.Ref())
			return m, cmd
		}
	case key.Matches(msg, m.keys.AttributeName):
		cmd := m.openInput(modeAttributeName, "", s.ExtendedAttribute())
		return m, cmd
	case key.Matches(msg, m.keys.EditAttribute):
		if s.ExtendedAttribute() == "" {
			cmd := m.openInput(modeAttributeName, "", "")
			return m, cmd
		}
		if item, ok := m.principal(s); ok {
			value := ""
			if v, ok := item.Attribute(s.ExtendedAttribute()); ok {
				value = fmt.Sprint(v)
			}
			cmd := m.openInput(modeAttributeValue, item.UID(), value)
			return m, cmd
		}

	case key.Matches(msg, m.keys.ToggleActive):
		m.toggleFlag(s, state.FlagActive, (*hierarchy.Item).Active)
	case key.Matches(msg, m.keys.ToggleDerived):
		m.toggleFlag(s, state.FlagDerived, (*hierarchy.Item).Derived)
	case key.Matches(msg, m.keys.ToggleNorm):
		m.toggleFlag(s, state.FlagNormative, (*hierarchy.Item).Normative)
	case key.Matches(msg, m.keys.ToggleHeading):
		m.toggleFlag(s, state.FlagHeading, (*hierarchy.Item).Heading)

	case key.Matches(msg, m.keys.AddLink):
		if item, ok := m.principal(s); ok {
			cmd := m.openInput(modeLinkTarget, item.UID(), "")
			return m, cmd
		}
	case key.Matches(msg, m.keys.RemoveLinks):
		m.removeLinks(s)

	case key.Matches(msg, m.keys.AddItem):
		if doc := s.DocumentOrFirst(); doc != nil {
			if m.dispatch(state.AddItem{Prefix: doc.Prefix()}) {
				m.focus = paneItems
			}
		}
	case key.Matches(msg, m.keys.RemoveItem):
		if uids := s.ItemsOrFirst(); len(uids) > 0 {
			m.removing = uids
			m.mode = modeConfirmRemove
		}
	case key.Matches(msg, m.keys.Indent):
		if item, ok := m.principal(s); ok {
			m.dispatch(state.Reindent{UID: item.UID(), Delta: 1})
		}
	case key.Matches(msg, m.keys.Dedent):
		if item, ok := m.principal(s); ok {
			m.dispatch(state.Reindent{UID: item.UID(), Delta: -1})
		}
	case key.Matches(msg, m.keys.Reorder):
		if doc := s.DocumentOrFirst(); doc != nil {
			if m.dispatch(state.ReorderDocument{Prefix: doc.Prefix(), Keep: s.Principal()}) {
				m.setStatus("success", "Renumbered "+string(doc.Prefix()))
			}
		}

	case key.Matches(msg, m.keys.Save):
		m.save()
	case key.Matches(msg, m.keys.Reload):
		if !s.HasProject() && s.ProjectPath() == "" {
			m.setStatus("warning", "No project path set")
			return m, nil
		}
		if s.PendingChange() && armed != "reload" {
			m.armDiscard("reload")
			return m, nil
		}
		cmd := m.reload()
		return m, cmd
	case key.Matches(msg, m.keys.Close):
		if s.PendingChange() && armed != "close" {
			m.armDiscard("close")
			return m, nil
		}
		m.dispatch(state.CloseProject{})
	}
	return m, nil
}

func (m *Model) armDiscard(name string) {
	m.discard = name
	m.setStatus("warning", fmt.Sprintf("Unsaved changes. Press %s again to discard them.", name))
}

// principal returns the item edits apply to, reporting when there is none.
func (m *Model) principal(s state.State) (*hierarchy.Item, bool) {
	item, ok := s.PrincipalItem()
	if !ok {
		m.setStatus("warning", "No item selected")
	}
	return item, ok
}

func (m *Model) move(delta int) {
	switch m.focus {
	case paneDocuments:
		if prefix, ok := m.documents.neighbor(delta); ok && prefix != m.documents.active {
			m.dispatch(state.SelectDocument{Prefix: prefix})
		}
	case paneItems:
		m.items.move(delta)
	case paneLinks:
		m.links.move(delta)
	case paneDetail:
		switch {
		case delta <= -1<<20:
			m.detail.viewport.GotoTop()
		case delta >= 1<<20:
			m.detail.viewport.GotoBottom()
		case delta < 0:
			m.detail.viewport.LineUp(-delta)
		default:
			m.detail.viewport.LineDown(delta)
		}
	}
}

// activate handles Confirm in normal mode: select the item under the cursor,
// or follow the link under the cursor to its target.
func (m *Model) activate() tea.Cmd {
	switch m.focus {
	case paneDocuments:
		m.focus = paneItems
	case paneItems:
		if it, ok := m.items.current(); ok {
			m.dispatch(state.SelectItems{UIDs: []hierarchy.UID{it.UID()}})
		}
	case paneLinks:
		target, ok := m.links.current()
		if !ok {
			return nil
		}
		if !m.dispatch(state.SelectDocument{Prefix: target.Prefix()}) {
			return nil
		}
		m.focus = paneItems
		return follow(state.SelectItems{UIDs: []hierarchy.UID{target}})
	}
	return nil
}

func (m *Model) toggleSelection(s state.State) {
	switch m.focus {
	case paneItems:
		m.dispatch(state.SelectItems{UIDs: m.items.toggle(s.SelectedItems())})
		m.items.move(1)
	case paneLinks:
		uid, ok := m.links.current()
		if !ok {
			return
		}
		if s.IsLinkSelected(uid) {
			m.dispatch(state.SelectLinks{Deselect: []hierarchy.UID{uid}})
		} else {
			m.dispatch(state.SelectLinks{Select: []hierarchy.UID{uid}})
		}
		m.links.move(1)
	}
}

func (m *Model) toggleFlag(s state.State, flag state.Flag, get func(*hierarchy.Item) bool) {
	item, ok := m.principal(s)
	if !ok {
		return
	}
	m.dispatch(state.SetItemFlag{UID: item.UID(), Flag: flag, Value: !get(item)})
}

func (m *Model) removeLinks(s state.State) {
	item, ok := m.principal(s)
	if !ok {
		return
	}
	targets := s.SelectedLinks()
	if len(targets) == 0 {
		if uid, ok := m.links.current(); ok {
			targets = []hierarchy.UID{uid}
		}
	}
	if len(targets) == 0 {
		m.setStatus("warning", "No links selected")
		return
	}
	if m.dispatch(state.RemoveLinks{UID: item.UID(), Targets: targets}) {
		m.setStatus("success", fmt.Sprintf("Removed %d link(s)", len(targets)))
	}
}

func (m *Model) save() {
	if m.marker != nil {
		m.marker.MarkSelfWrite()
	}
	if m.dispatch(state.SaveProject{}) {
		m.setStatus("success", "Saved")
	}
}

// reload loads the project again and queues a restore of the selection.
func (m *Model) reload() tea.Cmd {
	before := m.store.State()
	restore := restoreMsg{document: before.SelectedDocument(), items: before.SelectedItems()}
	if !m.dispatch(state.LoadProject{}) {
		return nil
	}
	m.setStatus("info", "Reloaded "+m.store.State().ProjectPath())
	return func() tea.Msg { return restore }
}

func (m *Model) restore(msg restoreMsg) tea.Cmd {
	tree := m.store.State().Tree()
	if tree == nil {
		return nil
	}
	if msg.document != "" {
		if _, err := tree.FindDocument(msg.document); err == nil {
			m.dispatch(state.SelectDocument{Prefix: msg.document})
		}
	}
	var keep []hierarchy.UID
	for _, uid := range msg.items {
		if _, err := tree.FindItem(uid); err == nil {
			keep = append(keep, uid)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	return follow(state.SelectItems{UIDs: keep})
}

func (m *Model) openInput(mode inputMode, target hierarchy.UID, value string) tea.Cmd {
	m.mode = mode
	m.target = target
	m.input.Prompt = mode.prompt() + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) openText(item *hierarchy.Item) tea.Cmd {
	m.mode = modeText
	m.target = item.UID()
	m.text.SetValue(item.Text())
	return tea.Batch(m.text.Focus(), textarea.Blink)
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.target = ""
	m.removing = nil
	m.input.Blur()
	m.text.Blur()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConfirmRemove:
		if key.Matches(msg, m.keys.Confirm) || msg.String() == "y" {
			uids := m.removing
			if m.dispatch(state.RemoveItems{UIDs: uids}) {
				m.setStatus("success", fmt.Sprintf("Removed %d item(s)", len(uids)))
			}
		}
		m.closeInput()
		return m, nil

	case modeText:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.closeInput()
			return m, nil
		case key.Matches(msg, m.keys.Save):
			m.dispatch(state.SetItemText{UID: m.target, Text: m.text.Value()})
			m.closeInput()
			return m, nil
		}
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.mode == modeFilter {
			m.dispatch(state.SetLinkFilter{Text: m.prevFilter})
		}
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.commitInput(m.input.Value())
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeFilter {
		m.dispatch(state.SetLinkFilter{Text: m.input.Value()})
	}
	return m, cmd
}

func (m *Model) commitInput(value string) {
	switch m.mode {
	case modeRef:
		m.dispatch(state.SetItemReference{UID: m.target, Ref: value})
	case modeAttributeName:
		m.dispatch(state.SetExtendedAttributeName{Name: value})
	case modeAttributeValue:
		m.dispatch(state.SetExtendedAttributeValue{UID: m.target, Name: m.store.State().ExtendedAttribute(), Value: value})
	case modeFilter:
		m.dispatch(state.SetLinkFilter{Text: value})
	case modeLinkTarget:
		if m.dispatch(state.AddLink{UID: m.target, Target: value}) {
			m.setStatus("success", fmt.Sprintf("Linked %s → %s", m.target, strings.TrimSpace(value)))
		}
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	t := m.theme
	s := m.store.State()

	if m.help.ShowAll {
		return t.Header.Render("Keys") + "\n\n" + m.help.View(m.keys)
	}

	header := t.Header.Render("reqs")
	if path := s.ProjectPath(); path != "" {
		header += " " + t.Muted.Render(path)
	}
	if s.PendingChange() {
		header += t.Warning.Render(" [modified]")
	}

	footer := m.footer()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 6 {
		bodyHeight = 6
	}

	leftWidth := max(16, m.width/5)
	midWidth := max(24, (m.width-leftWidth)/2)
	rightWidth := max(24, m.width-leftWidth-midWidth)
	// Borders take two cells in each direction.
	inner := bodyHeight - 2
	linksHeight := max(3, inner/3)
	detailHeight := max(3, bodyHeight-linksHeight-4)

	left := m.frame(paneDocuments, leftWidth, inner, m.documents.view(t, inner-1))
	mid := m.frame(paneItems, midWidth, inner, m.items.view(t, inner-1))
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.frame(paneDetail, rightWidth, detailHeight, m.detail.view(t, rightWidth-2, detailHeight-1)),
		m.frame(paneLinks, rightWidth, linksHeight, m.links.view(t, linksHeight-1)),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, mid, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) frame(p pane, width, height int, content string) string {
	style := m.theme.Panel
	if p == m.focus {
		style = m.theme.FocusedPanel
	}
	title := m.theme.Bold.Render(p.String())
	return style.Width(width - 2).Height(height).Render(title + "\n" + content)
}

func (m Model) footer() string {
	t := m.theme
	switch m.mode {
	case modeText:
		hint := t.Muted.Render(fmt.Sprintf("editing %s  %s save  %s cancel", m.target, m.keys.Save.Help().Key, m.keys.Cancel.Help().Key))
		return m.text.View() + "\n" + hint
	case modeConfirmRemove:
		ids := make([]string, len(m.removing))
		for i, uid := range m.removing {
			ids[i] = string(uid)
		}
		return t.Warning.Render(fmt.Sprintf("Remove %s? (y/%s)", strings.Join(ids, ", "), m.keys.Confirm.Help().Key))
	case modeNormal:
	default:
		return m.input.View()
	}

	status := t.StatusBar.Render(m.help.View(m.keys))
	if m.status != "" {
		status = t.RenderStatus(m.statusKind, m.status)
	}
	return status
}

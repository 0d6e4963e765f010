package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/state"
	"github.com/grovetools/reqs/tui/theme"
)

type pane int

const (
	paneDocuments pane = iota
	paneItems
	paneLinks
	paneDetail
	paneCount
)

func (p pane) String() string {
	switch p {
	case paneDocuments:
		return "Documents"
	case paneItems:
		return "Items"
	case paneLinks:
		return "Links"
	case paneDetail:
		return "Detail"
	}
	return "?"
}

// documentsPanel lists the documents of the tree. Its cursor is the
// selected document, falling back to the root document.
type documentsPanel struct {
	docs   []*hierarchy.Document
	active hierarchy.Prefix
}

func (p *documentsPanel) observe(s state.State) {
	p.docs = nil
	p.active = ""
	if s.HasProject() {
		p.docs = s.Tree().Documents()
	}
	if doc := s.DocumentOrFirst(); doc != nil {
		p.active = doc.Prefix()
	}
}

func (p *documentsPanel) index() int {
	for i, d := range p.docs {
		if d.Prefix() == p.active {
			return i
		}
	}
	return 0
}

// neighbor returns the prefix delta rows away from the active document.
func (p *documentsPanel) neighbor(delta int) (hierarchy.Prefix, bool) {
	if len(p.docs) == 0 {
		return "", false
	}
	return p.docs[clamp(p.index()+delta, len(p.docs))].Prefix(), true
}

func (p *documentsPanel) view(t *theme.Theme, height int) string {
	if len(p.docs) == 0 {
		return t.Muted.Render("no project")
	}
	var lines []string
	for _, d := range p.docs {
		label := string(d.Prefix())
		if d.Parent() != "" {
			label += t.Muted.Render(" → " + string(d.Parent()))
		}
		label += t.Muted.Render(fmt.Sprintf(" (%d)", len(d.Items())))
		if d.Prefix() == p.active {
			lines = append(lines, t.Selected.Render("▸ "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	return window(lines, p.index(), height)
}

// itemsPanel lists the items of the active document. The cursor is local to
// the view; the selection lives in the store.
type itemsPanel struct {
	items     []*hierarchy.Item
	selected  map[hierarchy.UID]bool
	principal hierarchy.UID
	attribute string
	cursor    int
}

func (p *itemsPanel) observe(s state.State) {
	var current hierarchy.UID
	if it, ok := p.current(); ok {
		current = it.UID()
	}

	p.items = nil
	if doc := s.DocumentOrFirst(); doc != nil {
		p.items = doc.Items()
	}
	p.selected = map[hierarchy.UID]bool{}
	for _, uid := range s.SelectedItems() {
		p.selected[uid] = true
	}
	p.attribute = s.ExtendedAttribute()

	// Follow the principal when it moves, otherwise keep the cursor on the
	// same item.
	follow := current
	if s.Principal() != p.principal {
		follow = s.Principal()
	}
	p.principal = s.Principal()
	for i, it := range p.items {
		if it.UID() == follow {
			p.cursor = i
			return
		}
	}
	p.cursor = clamp(p.cursor, len(p.items))
}

func (p *itemsPanel) current() (*hierarchy.Item, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) {
		return nil, false
	}
	return p.items[p.cursor], true
}

func (p *itemsPanel) move(delta int) {
	p.cursor = clamp(p.cursor+delta, len(p.items))
}

// toggle returns the selection with the cursor item added or removed. The
// principal stays first.
func (p *itemsPanel) toggle(selection []hierarchy.UID) []hierarchy.UID {
	it, ok := p.current()
	if !ok {
		return selection
	}
	uid := it.UID()
	if !p.selected[uid] {
		return append(selection, uid)
	}
	out := make([]hierarchy.UID, 0, len(selection))
	for _, s := range selection {
		if s != uid {
			out = append(out, s)
		}
	}
	return out
}

func (p *itemsPanel) view(t *theme.Theme, height int) string {
	if len(p.items) == 0 {
		return t.Muted.Render("no items")
	}
	lines := make([]string, 0, len(p.items))
	for i, it := range p.items {
		lines = append(lines, p.row(t, i, it))
	}
	return window(lines, p.cursor, height)
}

func (p *itemsPanel) row(t *theme.Theme, i int, it *hierarchy.Item) string {
	mark := "  "
	if p.selected[it.UID()] {
		mark = "● "
		if it.UID() == p.principal {
			mark = "◉ "
		}
	}
	indent := strings.Repeat("  ", it.Level().Depth()-1)
	summary := it.Header()
	if summary == "" {
		summary = firstLine(it.Text())
	}
	text := fmt.Sprintf("%s%s %s %s", mark, indent, it.Level(), it.UID())
	if it.Heading() {
		text = t.Bold.Render(text)
	}
	if summary != "" {
		text += "  " + summary
	}
	if p.attribute != "" {
		if v, ok := it.Attribute(p.attribute); ok {
			text += t.Accent.Render(fmt.Sprintf("  [%s=%v]", p.attribute, v))
		}
	}
	if it.Dirty() {
		text += t.Warning.Render(" *")
	}

	var style lipgloss.Style
	switch {
	case i == p.cursor:
		style = t.Selected
	case p.selected[it.UID()]:
		style = t.Marked
	case !it.Active():
		style = t.Muted
	default:
		return text
	}
	return style.Render(text)
}

// linksPanel shows the principal item's links that pass the filter.
type linksPanel struct {
	links    []hierarchy.UID
	selected map[hierarchy.UID]bool
	filter   string
	cursor   int
}

func (p *linksPanel) observe(s state.State) {
	p.links = s.VisibleLinks()
	p.filter = s.LinkFilter()
	p.selected = map[hierarchy.UID]bool{}
	for _, uid := range s.SelectedLinks() {
		p.selected[uid] = true
	}
	p.cursor = clamp(p.cursor, len(p.links))
}

func (p *linksPanel) current() (hierarchy.UID, bool) {
	if p.cursor < 0 || p.cursor >= len(p.links) {
		return "", false
	}
	return p.links[p.cursor], true
}

func (p *linksPanel) move(delta int) {
	p.cursor = clamp(p.cursor+delta, len(p.links))
}

func (p *linksPanel) view(t *theme.Theme, height int) string {
	var lines []string
	if p.filter != "" {
		lines = append(lines, t.Muted.Render("filter: "+p.filter))
	}
	if len(p.links) == 0 {
		return strings.Join(append(lines, t.Muted.Render("no links")), "\n")
	}
	offset := len(lines)
	for i, uid := range p.links {
		mark := "  "
		if p.selected[uid] {
			mark = "● "
		}
		line := mark + string(uid)
		if i == p.cursor {
			line = t.Selected.Render(line)
		} else if p.selected[uid] {
			line = t.Marked.Render(line)
		}
		lines = append(lines, line)
	}
	return window(lines, p.cursor+offset, height)
}

// detailPanel renders the principal item in a scrollable viewport.
type detailPanel struct {
	viewport viewport.Model
	content  func(t *theme.Theme) string
}

func newDetailPanel() *detailPanel {
	return &detailPanel{viewport: viewport.New(0, 0)}
}

func (p *detailPanel) observe(s state.State) {
	item, ok := s.PrincipalItem()
	if !ok {
		p.content = func(t *theme.Theme) string { return t.Muted.Render("no item selected") }
		return
	}
	attr := s.ExtendedAttribute()
	p.content = func(t *theme.Theme) string { return renderItem(t, item, attr) }
	p.viewport.GotoTop()
}

func (p *detailPanel) view(t *theme.Theme, width, height int) string {
	p.viewport.Width = width
	p.viewport.Height = height
	if p.content != nil {
		p.viewport.SetContent(p.content(t))
	}
	return p.viewport.View()
}

func renderItem(t *theme.Theme, item *hierarchy.Item, attribute string) string {
	var b strings.Builder
	title := fmt.Sprintf("%s  %s", item.UID(), item.Level())
	if item.Header() != "" {
		title += "  " + item.Header()
	}
	b.WriteString(t.Title.Render(title))
	b.WriteString("\n")

	field := func(name, value string) {
		b.WriteString(t.Muted.Render(fmt.Sprintf("%-10s", name)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("ref", item.Ref())
	field("active", yesNo(item.Active()))
	field("derived", yesNo(item.Derived()))
	field("normative", yesNo(item.Normative()))
	field("heading", yesNo(item.Heading()))
	if attribute != "" {
		value := t.Muted.Render("unset")
		if v, ok := item.Attribute(attribute); ok {
			value = fmt.Sprint(v)
		}
		field(attribute, value)
	}
	if names := item.AttributeNames(); len(names) > 0 {
		sort.Strings(names)
		field("extended", strings.Join(names, ", "))
	}

	b.WriteString("\n")
	text := item.Text()
	if text == "" {
		text = t.Muted.Render("(no text)")
	}
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n")

	children := item.FindChildLinks()
	b.WriteString(t.Bold.Render(fmt.Sprintf("Linked from (%d)", len(children))))
	b.WriteString("\n")
	for _, child := range children {
		b.WriteString("  " + string(child.UID()))
		if line := firstLine(child.Text()); line != "" {
			b.WriteString(t.Muted.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// window returns at most height lines of lines, scrolled so that cursor is
// visible.
func window(lines []string, cursor, height int) string {
	if height <= 0 || len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return strings.Join(lines[start:start+height], "\n")
}

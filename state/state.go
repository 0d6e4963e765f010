package state

import (
	"sort"
	"strings"

	"github.com/grovetools/reqs/pkg/hierarchy"
)

// State is one immutable snapshot of the session. The reducer builds a new
// State per dispatch; accessors return copies so callers cannot alter it.
//
// The hierarchy behind Tree is shared between snapshots and must only be
// mutated through Store.Dispatch.
type State struct {
	cwd               string
	projectPath       string
	tree              *hierarchy.Tree
	selectedDocument  hierarchy.Prefix
	selectedItems     []hierarchy.UID
	principal         hierarchy.UID
	selectedLinks     map[hierarchy.UID]struct{}
	linkFilter        string
	extendedAttribute string
	pendingChange     bool
}

// Seed returns the initial State for a session started in cwd.
func Seed(cwd string) State {
	return State{cwd: cwd}
}

func (s State) Cwd() string                        { return s.cwd }
func (s State) ProjectPath() string                { return s.projectPath }
func (s State) Tree() *hierarchy.Tree              { return s.tree }
func (s State) HasProject() bool                   { return s.tree != nil }
func (s State) SelectedDocument() hierarchy.Prefix { return s.selectedDocument }
func (s State) Principal() hierarchy.UID           { return s.principal }
func (s State) LinkFilter() string                 { return s.linkFilter }
func (s State) ExtendedAttribute() string          { return s.extendedAttribute }
func (s State) PendingChange() bool                { return s.pendingChange }

// SelectedItems returns the item selection in selection order.
func (s State) SelectedItems() []hierarchy.UID {
	return append([]hierarchy.UID(nil), s.selectedItems...)
}

// SelectedLinks returns the selected link targets, sorted.
func (s State) SelectedLinks() []hierarchy.UID {
	out := make([]hierarchy.UID, 0, len(s.selectedLinks))
	for uid := range s.selectedLinks {
		out = append(out, uid)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// IsLinkSelected reports whether uid is in the link selection.
func (s State) IsLinkSelected(uid hierarchy.UID) bool {
	_, ok := s.selectedLinks[uid]
	return ok
}

// PrincipalItem resolves the principal in the current tree.
func (s State) PrincipalItem() (*hierarchy.Item, bool) {
	if s.tree == nil || s.principal == "" {
		return nil, false
	}
	item, err := s.tree.FindItem(s.principal)
	if err != nil {
		return nil, false
	}
	return item, true
}

// DocumentOrFirst returns the selected document, or the root document when
// none is selected. It does not change the selection.
func (s State) DocumentOrFirst() *hierarchy.Document {
	if s.tree == nil {
		return nil
	}
	if s.selectedDocument != "" {
		if doc, err := s.tree.FindDocument(s.selectedDocument); err == nil {
			return doc
		}
	}
	docs := s.tree.Documents()
	if len(docs) == 0 {
		return nil
	}
	return docs[0]
}

// ItemsOrFirst returns the item selection, or the first item of
// DocumentOrFirst when nothing is selected.
func (s State) ItemsOrFirst() []hierarchy.UID {
	if len(s.selectedItems) > 0 {
		return s.SelectedItems()
	}
	doc := s.DocumentOrFirst()
	if doc == nil {
		return nil
	}
	items := doc.Items()
	if len(items) == 0 {
		return nil
	}
	return []hierarchy.UID{items[0].UID()}
}

// VisibleLinks returns the principal item's links that contain the link
// filter, case-insensitively.
func (s State) VisibleLinks() []hierarchy.UID {
	item, ok := s.PrincipalItem()
	if !ok {
		return nil
	}
	filter := strings.ToLower(s.linkFilter)
	var out []hierarchy.UID
	for _, uid := range item.Links() {
		if filter == "" || strings.Contains(strings.ToLower(string(uid)), filter) {
			out = append(out, uid)
		}
	}
	return out
}

// ExtendedAttributeValue returns the principal item's value for the current
// extended attribute name.
func (s State) ExtendedAttributeValue() (interface{}, bool) {
	item, ok := s.PrincipalItem()
	if !ok || s.extendedAttribute == "" {
		return nil, false
	}
	return item.Attribute(s.extendedAttribute)
}

// clone returns a deep copy of the session fields.
func (s State) clone() State {
	next := s
	next.selectedItems = append([]hierarchy.UID(nil), s.selectedItems...)
	next.selectedLinks = make(map[hierarchy.UID]struct{}, len(s.selectedLinks))
	for uid := range s.selectedLinks {
		next.selectedLinks[uid] = struct{}{}
	}
	return next
}

// closed returns the session with no project loaded.
func (s State) closed() State {
	return State{cwd: s.cwd, projectPath: s.projectPath}
}

package state

import (
	"fmt"
	"os"
	"strings"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/util/pathutil"
)

// Loader opens a project hierarchy. It is the only way the reducer reaches
// the filesystem for reading.
type Loader interface {
	Load(root string) (*hierarchy.Tree, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(root string) (*hierarchy.Tree, error)

func (f LoaderFunc) Load(root string) (*hierarchy.Tree, error) { return f(root) }

// HierarchyLoader loads projects with hierarchy.Load and opts.
func HierarchyLoader(opts ...hierarchy.Option) Loader {
	return LoaderFunc(func(root string) (*hierarchy.Tree, error) {
		return hierarchy.Load(root, opts...)
	})
}

// Outcome is the result of reducing one action. On failure State equals the
// input state.
type Outcome struct {
	State  State
	Errors []error
}

func ok(s State) Outcome { return Outcome{State: s} }

func fail(s State, errs ...error) Outcome { return Outcome{State: s, Errors: errs} }

// Reduce applies a to s. Only Effect actions use loader or write files;
// every other action is computed from s alone.
func Reduce(s State, a Action, loader Loader) Outcome {
	switch a := a.(type) {
	case SetWorkingDirectory:
		next := s.clone()
		next.cwd = a.Path
		return ok(next)
	case SetProjectPath:
		next := s.clone()
		next.projectPath = a.Path
		return ok(next)

	case LoadProject:
		return reduceLoad(s, loader)
	case SaveProject:
		return reduceSave(s)
	case CloseProject:
		return ok(s.closed())

	case SelectDocument:
		return reduceSelectDocument(s, a)
	case SelectItems:
		return reduceSelectItems(s, a)
	case SelectLinks:
		next := s.clone()
		for _, uid := range a.Select {
			next.selectedLinks[uid] = struct{}{}
		}
		for _, uid := range a.Deselect {
			delete(next.selectedLinks, uid)
		}
		return ok(next)
	case SetLinkFilter:
		next := s.clone()
		next.linkFilter = a.Text
		return ok(next)
	case SetExtendedAttributeName:
		next := s.clone()
		next.extendedAttribute = strings.TrimSpace(a.Name)
		return ok(next)

	case SetItemText:
		return editItem(s, a.UID, func(item *hierarchy.Item) error {
			item.SetText(a.Text)
			return nil
		})
	case SetItemReference:
		return editItem(s, a.UID, func(item *hierarchy.Item) error {
			item.SetRef(a.Ref)
			return nil
		})
	case SetItemFlag:
		return reduceSetFlag(s, a)
	case SetExtendedAttributeValue:
		return reduceSetAttribute(s, a)

	case AddLink:
		return reduceAddLink(s, a)
	case RemoveLinks:
		return reduceRemoveLinks(s, a)

	case AddItem:
		return reduceAddItem(s, a)
	case RemoveItems:
		return reduceRemoveItems(s, a)
	case Reindent:
		return reduceReindent(s, a)
	case ReorderDocument:
		return reduceReorder(s, a)
	}

	return fail(s, errors.New(errors.ErrCodeInternal, fmt.Sprintf("unhandled action %s", Name(a))))
}

func reduceLoad(s State, loader Loader) Outcome {
	if s.projectPath == "" {
		return fail(s, errors.Invalid("project path", "no project path set"))
	}
	if loader == nil {
		return fail(s, errors.New(errors.ErrCodeInternal, "no project loader configured"))
	}

	cwd := s.cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}
	root := pathutil.Resolve(cwd, s.projectPath)

	tree, err := loader.Load(root)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.IOFailure("load", root, err)
		}
		return fail(s, err)
	}

	next := s.closed()
	next.tree = tree
	return ok(next)
}

func reduceSave(s State) Outcome {
	if s.tree == nil {
		return ok(s.clone())
	}

	next := s.clone()
	failures := s.tree.Save()
	if len(failures) == 0 {
		next.pendingChange = false
		return ok(next)
	}
	// Items that did persist stay persisted; the flag stays set for the rest.
	return fail(next, failures...)
}

func reduceSelectDocument(s State, a SelectDocument) Outcome {
	if a.Prefix != "" {
		if s.tree == nil {
			return fail(s, errors.NotFound("document", string(a.Prefix)))
		}
		if _, err := s.tree.FindDocument(a.Prefix); err != nil {
			return fail(s, err)
		}
	}
	next := s.clone()
	next.selectedDocument = a.Prefix
	return ok(next)
}

func reduceSelectItems(s State, a SelectItems) Outcome {
	for _, uid := range a.UIDs {
		if s.tree == nil {
			return fail(s, errors.NotFound("item", string(uid)))
		}
		if _, err := s.tree.FindItem(uid); err != nil {
			return fail(s, err)
		}
	}

	next := s.clone()
	next.setSelection(append([]hierarchy.UID(nil), a.UIDs...))
	next.selectedLinks = map[hierarchy.UID]struct{}{}
	return ok(next)
}

// setSelection replaces the item selection and derives the principal.
func (s *State) setSelection(uids []hierarchy.UID) {
	if len(uids) == 0 {
		s.selectedItems = nil
		s.principal = ""
		return
	}
	s.selectedItems = uids
	s.principal = uids[0]
}

// resolve finds uid in the loaded tree.
func resolve(s State, uid hierarchy.UID) (*hierarchy.Item, error) {
	if s.tree == nil {
		return nil, errors.NotFound("item", string(uid)).WithDetail("reason", "no project loaded")
	}
	return s.tree.FindItem(uid)
}

// editItem resolves uid, applies edit and marks the session pending. edit
// must validate before it mutates.
func editItem(s State, uid hierarchy.UID, edit func(*hierarchy.Item) error) Outcome {
	item, err := resolve(s, uid)
	if err != nil {
		return fail(s, err)
	}
	if err := edit(item); err != nil {
		return fail(s, err)
	}
	next := s.clone()
	next.pendingChange = true
	return ok(next)
}

func reduceSetFlag(s State, a SetItemFlag) Outcome {
	if _, err := ParseFlag(string(a.Flag)); err != nil {
		return fail(s, err)
	}
	return editItem(s, a.UID, func(item *hierarchy.Item) error {
		switch a.Flag {
		case FlagActive:
			item.SetActive(a.Value)
		case FlagDerived:
			item.SetDerived(a.Value)
		case FlagNormative:
			item.SetNormative(a.Value)
		case FlagHeading:
			item.SetHeading(a.Value)
		}
		return nil
	})
}

func reduceSetAttribute(s State, a SetExtendedAttributeValue) Outcome {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return fail(s, errors.Invalid("attribute", "empty attribute name"))
	}
	if hierarchy.IsReservedAttribute(name) {
		return fail(s, errors.Invalid("attribute", fmt.Sprintf("%q is a built-in field", name)))
	}
	return editItem(s, a.UID, func(item *hierarchy.Item) error {
		if strings.TrimSpace(a.Value) == "" {
			item.RemoveAttribute(name)
			return nil
		}
		return item.SetAttribute(name, a.Value)
	})
}

func reduceAddLink(s State, a AddLink) Outcome {
	target, _, _, err := hierarchy.ParseUID(a.Target)
	if err != nil {
		return fail(s, errors.Invalid("link target", fmt.Sprintf("cannot parse %q", a.Target)))
	}
	item, err := resolve(s, a.UID)
	if err != nil {
		return fail(s, err)
	}
	if _, err := s.tree.FindItem(target); err != nil {
		return fail(s, err)
	}
	if item.UID() == target {
		return fail(s, errors.Invalid("link target", "an item cannot link to itself").
			WithDetail("uid", string(target)))
	}

	item.AddLink(target)
	next := s.clone()
	next.pendingChange = true
	return ok(next)
}

func reduceRemoveLinks(s State, a RemoveLinks) Outcome {
	item, err := resolve(s, a.UID)
	if err != nil {
		return fail(s, err)
	}

	next := s.clone()
	for _, uid := range a.Targets {
		item.RemoveLink(uid)
		delete(next.selectedLinks, uid)
	}
	next.pendingChange = true
	return ok(next)
}

func reduceAddItem(s State, a AddItem) Outcome {
	if s.tree == nil {
		return fail(s, errors.NotFound("document", string(a.Prefix)))
	}
	doc, err := s.tree.FindDocument(a.Prefix)
	if err != nil {
		return fail(s, err)
	}
	var level hierarchy.Level
	if strings.TrimSpace(a.Level) != "" {
		if level, err = hierarchy.ParseLevel(a.Level); err != nil {
			return fail(s, err)
		}
	}

	item := doc.AddItem(level)
	next := s.clone()
	next.selectedDocument = doc.Prefix()
	next.setSelection([]hierarchy.UID{item.UID()})
	next.selectedLinks = map[hierarchy.UID]struct{}{}
	next.pendingChange = true
	return ok(next)
}

func reduceRemoveItems(s State, a RemoveItems) Outcome {
	items := make([]*hierarchy.Item, 0, len(a.UIDs))
	for _, uid := range a.UIDs {
		item, err := resolve(s, uid)
		if err != nil {
			return fail(s, err)
		}
		items = append(items, item)
	}

	removed := make(map[hierarchy.UID]struct{}, len(items))
	for _, item := range items {
		if _, seen := removed[item.UID()]; seen {
			continue
		}
		if _, err := item.Document().RemoveItem(item); err != nil {
			return fail(s, errors.Wrap(err, errors.ErrCodeInternal, "remove resolved item"))
		}
		removed[item.UID()] = struct{}{}
	}

	next := s.clone()
	var keep []hierarchy.UID
	for _, uid := range s.selectedItems {
		if _, gone := removed[uid]; !gone {
			keep = append(keep, uid)
		}
	}
	next.setSelection(keep)
	if next.principal != s.principal {
		next.selectedLinks = map[hierarchy.UID]struct{}{}
	}
	next.pendingChange = true
	return ok(next)
}

func reduceReindent(s State, a Reindent) Outcome {
	if a.Delta == 0 {
		return fail(s, errors.Invalid("delta", "must not be zero"))
	}
	item, err := resolve(s, a.UID)
	if err != nil {
		return fail(s, err)
	}

	depth := item.Level().Depth()
	if depth+a.Delta < 1 {
		return fail(s, errors.Invalid("delta", fmt.Sprintf("%s is already at the top level", a.UID)))
	}
	for i := 0; i > a.Delta; i-- {
		item.Dedent()
	}
	// Renumbering keeps an item at most one level below its predecessor.
	steps := min(a.Delta, maxDepth(item)-depth)
	for i := 0; i < steps; i++ {
		item.Indent()
	}

	item.Document().Reorder(item)
	next := s.clone()
	next.pendingChange = true
	return ok(next)
}

// maxDepth returns the deepest level item can keep in its document.
func maxDepth(item *hierarchy.Item) int {
	var prev *hierarchy.Item
	for _, it := range item.Document().Items() {
		if it == item {
			break
		}
		prev = it
	}
	if prev == nil {
		return 1
	}
	return prev.Level().Depth() + 1
}

func reduceReorder(s State, a ReorderDocument) Outcome {
	if s.tree == nil {
		return fail(s, errors.NotFound("document", string(a.Prefix)))
	}
	doc, err := s.tree.FindDocument(a.Prefix)
	if err != nil {
		return fail(s, err)
	}
	var keep *hierarchy.Item
	if a.Keep != "" {
		if keep, err = doc.FindItem(a.Keep); err != nil {
			return fail(s, err)
		}
	}

	doc.Reorder(keep)
	next := s.clone()
	next.pendingChange = true
	return ok(next)
}

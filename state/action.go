// Package state holds the editor session: an immutable State snapshot, the
// Actions that describe transitions, the reducer that applies them and the
// Store that serializes dispatch and notifies observers.
package state

import (
	"fmt"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/pkg/hierarchy"
)

// Action describes one requested state transition. Actions are plain data;
// only Store.Dispatch executes them. The set is closed.
type Action interface {
	actionName() string
}

// Effect marks the lifecycle actions that perform I/O and may fail for
// reasons outside the session.
type Effect interface {
	Action
	effect()
}

// Name returns the action's type name, e.g. "SetItemText".
func Name(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.actionName()
}

// IsEffect reports whether a performs I/O.
func IsEffect(a Action) bool {
	_, ok := a.(Effect)
	return ok
}

// Flag names a boolean item field.
type Flag string

const (
	FlagActive    Flag = "active"
	FlagDerived   Flag = "derived"
	FlagNormative Flag = "normative"
	FlagHeading   Flag = "heading"
)

// Flags lists every valid flag.
var Flags = []Flag{FlagActive, FlagDerived, FlagNormative, FlagHeading}

// ParseFlag validates a flag name.
func ParseFlag(name string) (Flag, error) {
	for _, f := range Flags {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.Invalid("flag", fmt.Sprintf("unknown flag %q", name))
}

// Environment

type SetWorkingDirectory struct{ Path string }

type SetProjectPath struct{ Path string }

// Lifecycle

// LoadProject opens the hierarchy at the current project path.
type LoadProject struct{}

// SaveProject writes every item with unsaved edits.
type SaveProject struct{}

// CloseProject drops the loaded hierarchy and the whole session selection.
type CloseProject struct{}

// Selection

type SelectDocument struct{ Prefix hierarchy.Prefix }

// SelectItems replaces the item selection; the first id becomes the principal.
type SelectItems struct{ UIDs []hierarchy.UID }

// SelectLinks adds Select to and removes Deselect from the link selection.
type SelectLinks struct {
	Select   []hierarchy.UID
	Deselect []hierarchy.UID
}

type SetLinkFilter struct{ Text string }

type SetExtendedAttributeName struct{ Name string }

// Item field edits

type SetItemText struct {
	UID  hierarchy.UID
	Text string
}

type SetItemReference struct {
	UID hierarchy.UID
	Ref string
}

type SetItemFlag struct {
	UID   hierarchy.UID
	Flag  Flag
	Value bool
}

// SetExtendedAttributeValue sets Name on the item; a blank Value removes it.
type SetExtendedAttributeValue struct {
	UID   hierarchy.UID
	Name  string
	Value string
}

// Link edits

// AddLink links UID to the item named by Target, which is parsed.
type AddLink struct {
	UID    hierarchy.UID
	Target string
}

type RemoveLinks struct {
	UID     hierarchy.UID
	Targets []hierarchy.UID
}

// Structural edits

// AddItem appends an item to a document. An empty Level places it after
// the last item.
type AddItem struct {
	Prefix hierarchy.Prefix
	Level  string
}

type RemoveItems struct{ UIDs []hierarchy.UID }

// Reindent moves an item Delta levels deeper (positive) or shallower
// (negative) and renumbers its document.
type Reindent struct {
	UID   hierarchy.UID
	Delta int
}

// ReorderDocument renumbers a document's levels. Keep, when set, wins ties.
type ReorderDocument struct {
	Prefix hierarchy.Prefix
	Keep   hierarchy.UID
}

func (SetWorkingDirectory) actionName() string       { return "SetWorkingDirectory" }
func (SetProjectPath) actionName() string            { return "SetProjectPath" }
func (LoadProject) actionName() string               { return "LoadProject" }
func (SaveProject) actionName() string               { return "SaveProject" }
func (CloseProject) actionName() string              { return "CloseProject" }
func (SelectDocument) actionName() string            { return "SelectDocument" }
func (SelectItems) actionName() string               { return "SelectItems" }
func (SelectLinks) actionName() string               { return "SelectLinks" }
func (SetLinkFilter) actionName() string             { return "SetLinkFilter" }
func (SetExtendedAttributeName) actionName() string  { return "SetExtendedAttributeName" }
func (SetItemText) actionName() string               { return "SetItemText" }
func (SetItemReference) actionName() string          { return "SetItemReference" }
func (SetItemFlag) actionName() string               { return "SetItemFlag" }
func (SetExtendedAttributeValue) actionName() string { return "SetExtendedAttributeValue" }
func (AddLink) actionName() string                   { return "AddLink" }
func (RemoveLinks) actionName() string               { return "RemoveLinks" }
func (AddItem) actionName() string                   { return "AddItem" }
func (RemoveItems) actionName() string               { return "RemoveItems" }
func (Reindent) actionName() string                  { return "Reindent" }
func (ReorderDocument) actionName() string           { return "ReorderDocument" }

func (LoadProject) effect()  {}
func (SaveProject) effect()  {}
func (CloseProject) effect() {}

// Package keymap defines the editor keybindings and their overrides from
// reqs.yml.
package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Editor contains every binding of the requirements editor. Navigation is
// vim style with arrow keys as alternatives.
type Editor struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding

	// Selection
	Select     key.Binding
	SelectNone key.Binding
	Filter     key.Binding

	// Item edits
	EditText      key.Binding
	EditRef       key.Binding
	EditAttribute key.Binding
	AttributeName key.Binding
	ToggleActive  key.Binding
	ToggleDerived key.Binding
	ToggleNorm    key.Binding
	ToggleHeading key.Binding
	AddLink       key.Binding
	RemoveLinks   key.Binding

	// Structure
	AddItem    key.Binding
	RemoveItem key.Binding
	Indent     key.Binding
	Dedent     key.Binding
	Reorder    key.Binding

	// Project
	Save   key.Binding
	Reload key.Binding
	Close  key.Binding

	// Input
	Confirm key.Binding
	Cancel  key.Binding

	// System
	Help key.Binding
	Quit key.Binding
}

// Default returns the default editor keymap.
func Default() Editor {
	return Editor{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		FocusNext: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		FocusPrev: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev pane")),

		Select:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle selection")),
		SelectNone: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("C-n", "clear selection")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter links")),

		EditText:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit text")),
		EditRef:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "edit ref")),
		EditAttribute: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "edit attribute")),
		AttributeName: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "choose attribute")),
		ToggleActive:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "toggle active")),
		ToggleDerived: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "toggle derived")),
		ToggleNorm:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "toggle normative")),
		ToggleHeading: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "toggle heading")),
		AddLink:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "add link")),
		RemoveLinks:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "remove selected links")),

		AddItem:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "add item")),
		RemoveItem: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "remove items")),
		Indent:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "indent")),
		Dedent:     key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "dedent")),
		Reorder:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "renumber document")),

		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save")),
		Reload: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("C-r", "reload")),
		Close:  key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("C-w", "close project")),

		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Load returns the default keymap with overrides applied. Override keys
// are snake_case binding names, e.g. "edit_text".
func Load(overrides map[string][]string) Editor {
	km := Default()
	bindings := km.byName()
	for name, keys := range overrides {
		if b, ok := bindings[strings.ToLower(name)]; ok {
			updateBinding(b, keys)
		}
	}
	return km
}

// updateBinding replaces the keys of a binding, keeping its description.
func updateBinding(binding *key.Binding, keys []string) {
	if len(keys) == 0 {
		return
	}
	help := binding.Help()
	*binding = key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), help.Desc),
	)
}

func (k *Editor) byName() map[string]*key.Binding {
	return map[string]*key.Binding{
		"up": &k.Up, "down": &k.Down, "top": &k.Top, "bottom": &k.Bottom,
		"focus_next": &k.FocusNext, "focus_prev": &k.FocusPrev,
		"select": &k.Select, "select_none": &k.SelectNone, "filter": &k.Filter,
		"edit_text": &k.EditText, "edit_ref": &k.EditRef,
		"edit_attribute": &k.EditAttribute, "attribute_name": &k.AttributeName,
		"toggle_active": &k.ToggleActive, "toggle_derived": &k.ToggleDerived,
		"toggle_normative": &k.ToggleNorm, "toggle_heading": &k.ToggleHeading,
		"add_link": &k.AddLink, "remove_links": &k.RemoveLinks,
		"add_item": &k.AddItem, "remove_item": &k.RemoveItem,
		"indent": &k.Indent, "dedent": &k.Dedent, "reorder": &k.Reorder,
		"save": &k.Save, "reload": &k.Reload, "close": &k.Close,
		"help": &k.Help, "quit": &k.Quit,
	}
}

// ShortHelp implements help.KeyMap.
func (k Editor) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusNext, k.EditText, k.AddLink, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k Editor) FullHelp() [][]key.Binding {
	sections := k.Sections()
	result := make([][]key.Binding, len(sections))
	for i, s := range sections {
		result[i] = s.FilterEnabled()
	}
	return result
}

// Sections implements SectionedKeyMap.
func (k Editor) Sections() []Section {
	return []Section{
		NewSection(SectionNavigation, k.Up, k.Down, k.Top, k.Bottom, k.FocusNext, k.FocusPrev),
		NewSection(SectionSelection, k.Select, k.SelectNone, k.Filter),
		NewSection(SectionEdit, k.EditText, k.EditRef, k.EditAttribute, k.AttributeName,
			k.ToggleActive, k.ToggleDerived, k.ToggleNorm, k.ToggleHeading, k.AddLink, k.RemoveLinks),
		NewSection(SectionStructure, k.AddItem, k.RemoveItem, k.Indent, k.Dedent, k.Reorder),
		NewSection(SectionProject, k.Save, k.Reload, k.Close),
		NewSection(SectionSystem, k.Help, k.Quit),
	}
}

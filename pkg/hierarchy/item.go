package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grovetools/reqs/errors"
	"gopkg.in/yaml.v3"
)

// reservedKeys are the item file keys with a dedicated field. Every other key
// is an extended attribute.
var reservedKeys = map[string]bool{
	"active":    true,
	"derived":   true,
	"header":    true,
	"level":     true,
	"links":     true,
	"normative": true,
	"ref":       true,
	"reviewed":  true,
	"text":      true,
}

// IsReservedAttribute reports whether name is a built-in item field and so
// cannot be used as an extended attribute.
func IsReservedAttribute(name string) bool {
	return reservedKeys[name]
}

// Link is an outgoing reference from an item to a parent item.
type Link struct {
	UID   UID
	Stamp string
}

// Item is a single requirement. Items are owned by their Document; setters
// mark the item dirty so Tree.Save persists it.
type Item struct {
	uid  UID
	path string
	doc  *Document

	level     Level
	text      string
	ref       string
	header    string
	reviewed  string
	active    bool
	derived   bool
	normative bool
	links     []Link
	attrs     map[string]interface{}

	dirty bool
}

func newItem(doc *Document, uid UID, level Level) *Item {
	return &Item{
		uid:       uid,
		path:      doc.itemPath(uid),
		doc:       doc,
		level:     level,
		active:    true,
		normative: true,
		attrs:     map[string]interface{}{},
		dirty:     true,
	}
}

func (i *Item) UID() UID { return i.uid }
func (i *Item) Path() string { return i.path }
func (i *Item) Document() *Document { return i.doc }
func (i *Item) Level() Level { return i.level }
func (i *Item) Text() string { return i.text }
func (i *Item) Ref() string { return i.ref }
func (i *Item) Header() string { return i.header }
func (i *Item) Reviewed() string { return i.reviewed }
func (i *Item) Active() bool { return i.active }
func (i *Item) Derived() bool { return i.derived }
func (i *Item) Normative() bool { return i.normative }
func (i *Item) Heading() bool { return i.level.Heading() }
func (i *Item) Dirty() bool { return i.dirty }

// Links returns the outgoing link targets in UID order.
func (i *Item) Links() []UID {
	out := make([]UID, 0, len(i.links))
	for _, l := range i.links {
		out = append(out, l.UID)
	}
	return out
}

// HasLink reports whether the item links to uid.
func (i *Item) HasLink(uid UID) bool {
	for _, l := range i.links {
		if l.UID == uid {
			return true
		}
	}
	return false
}

// Attribute returns the value of an extended attribute.
func (i *Item) Attribute(name string) (interface{}, bool) {
	v, ok := i.attrs[name]
	return v, ok
}

// AttributeNames returns the extended attribute names in sorted order.
func (i *Item) AttributeNames() []string {
	names := make([]string, 0, len(i.attrs))
	for k := range i.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (i *Item) SetText(text string) {
	if i.text != text {
		i.text = text
		i.dirty = true
	}
}

func (i *Item) SetRef(ref string) {
	if i.ref != ref {
		i.ref = ref
		i.dirty = true
	}
}

func (i *Item) SetActive(v bool) {
	if i.active != v {
		i.active = v
		i.dirty = true
	}
}

func (i *Item) SetDerived(v bool) {
	if i.derived != v {
		i.derived = v
		i.dirty = true
	}
}

func (i *Item) SetNormative(v bool) {
	if i.normative != v {
		i.normative = v
		i.dirty = true
	}
}

// SetHeading adds or removes the trailing .0 of the item level.
func (i *Item) SetHeading(v bool) {
	if i.level.Heading() != v {
		i.level = i.level.WithHeading(v)
		i.dirty = true
	}
}

// SetLevel moves the item to a new level.
func (i *Item) SetLevel(l Level) {
	if i.level.Compare(l) != 0 {
		i.level = l
		i.dirty = true
	}
}

// SetAttribute sets an extended attribute. Reserved names are rejected.
func (i *Item) SetAttribute(name string, value interface{}) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Invalid("attribute", "empty attribute name")
	}
	if IsReservedAttribute(name) {
		return errors.Invalid("attribute", fmt.Sprintf("%q is a built-in field", name))
	}
	if cur, ok := i.attrs[name]; ok && fmt.Sprint(cur) == fmt.Sprint(value) {
		return nil
	}
	i.attrs[name] = value
	i.dirty = true
	return nil
}

// RemoveAttribute deletes an extended attribute; removing a missing one is a no-op.
func (i *Item) RemoveAttribute(name string) {
	if _, ok := i.attrs[name]; ok {
		delete(i.attrs, name)
		i.dirty = true
	}
}

// AddLink adds a link to uid. It reports whether the link set changed.
func (i *Item) AddLink(uid UID) bool {
	if i.HasLink(uid) {
		return false
	}
	i.links = append(i.links, Link{UID: uid})
	sort.Slice(i.links, func(a, b int) bool { return i.links[a].UID < i.links[b].UID })
	i.dirty = true
	return true
}

// RemoveLink removes the link to uid. It reports whether the link set changed.
func (i *Item) RemoveLink(uid UID) bool {
	for idx, l := range i.links {
		if l.UID == uid {
			i.links = append(i.links[:idx], i.links[idx+1:]...)
			i.dirty = true
			return true
		}
	}
	return false
}

// Indent moves the item one level deeper.
func (i *Item) Indent() {
	i.SetLevel(i.level.Indent())
}

// Dedent moves the item one level up. It reports false when the item is
// already at the top level.
func (i *Item) Dedent() bool {
	l, ok := i.level.Dedent()
	if !ok {
		return false
	}
	i.SetLevel(l)
	return true
}

// FindChildLinks returns the items elsewhere in the tree that link to this
// item, ordered by UID.
func (i *Item) FindChildLinks() []*Item {
	if i.doc == nil || i.doc.tree == nil {
		return nil
	}
	var out []*Item
	for _, doc := range i.doc.tree.Documents() {
		for _, other := range doc.items {
			if other != i && other.HasLink(i.uid) {
				out = append(out, other)
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].uid < out[b].uid })
	return out
}

// itemFile captures the fields that need their raw YAML form.
type itemFile struct {
	Level yaml.Node `yaml:"level"`
}

func decodeItem(doc *Document, uid UID, path string, data []byte) (*Item, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if doc.validator != nil {
		if err := doc.validator.Validate(raw); err != nil {
			return nil, errors.ParseFailed(path, err)
		}
	}

	var nodes itemFile
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	level, err := levelFromNode(&nodes.Level)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}

	item := &Item{
		uid:       uid,
		path:      path,
		doc:       doc,
		level:     level,
		active:    boolValue(raw["active"], true),
		derived:   boolValue(raw["derived"], false),
		normative: boolValue(raw["normative"], true),
		text:      stringValue(raw["text"]),
		ref:       stringValue(raw["ref"]),
		header:    stringValue(raw["header"]),
		reviewed:  stringValue(raw["reviewed"]),
		attrs:     map[string]interface{}{},
	}

	links, err := decodeLinks(raw["links"])
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	item.links = links

	for k, v := range raw {
		if !reservedKeys[k] {
			item.attrs[k] = v
		}
	}
	return item, nil
}

func decodeLinks(v interface{}) ([]Link, error) {
	list, ok := v.([]interface{})
	if v == nil {
		return nil, nil
	}
	if !ok {
		return nil, errors.Invalid("links", "expected a list")
	}

	var links []Link
	seen := map[UID]bool{}
	for _, entry := range list {
		var link Link
		switch e := entry.(type) {
		case string:
			link.UID = UID(strings.TrimSpace(e))
		case map[string]interface{}:
			for k, stamp := range e {
				link.UID = UID(strings.TrimSpace(k))
				link.Stamp = stringValue(stamp)
			}
		default:
			return nil, errors.Invalid("links", fmt.Sprintf("unsupported entry %v", entry))
		}
		if _, _, _, err := ParseUID(string(link.UID)); err != nil {
			return nil, err
		}
		if !seen[link.UID] {
			seen[link.UID] = true
			links = append(links, link)
		}
	}
	sort.Slice(links, func(a, b int) bool { return links[a].UID < links[b].UID })
	return links, nil
}

func (i *Item) encode() ([]byte, error) {
	out := make(map[string]interface{}, len(i.attrs)+len(reservedKeys))
	for k, v := range i.attrs {
		out[k] = v
	}

	links := make([]map[string]interface{}, 0, len(i.links))
	for _, l := range i.links {
		var stamp interface{}
		if l.Stamp != "" {
			stamp = l.Stamp
		}
		links = append(links, map[string]interface{}{string(l.UID): stamp})
	}

	out["active"] = i.active
	out["derived"] = i.derived
	out["normative"] = i.normative
	out["header"] = i.header
	out["level"] = i.level.yamlValue()
	out["links"] = links
	out["ref"] = i.ref
	out["text"] = i.text
	if i.reviewed != "" {
		out["reviewed"] = i.reviewed
	} else {
		out["reviewed"] = nil
	}

	return yaml.Marshal(out)
}

func boolValue(v interface{}, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

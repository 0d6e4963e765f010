package hierarchy

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/schema"
	"gopkg.in/yaml.v3"
)

const (
	// SettingsFile marks a directory as a document.
	SettingsFile = ".doorstop.yml"
	// SkipFile excludes a document directory from the tree.
	SkipFile = ".doorstop.skip"

	defaultDigits = 3
	defaultSep    = ""
)

type documentSettings struct {
	Settings struct {
		Prefix string  `yaml:"prefix"`
		Parent *string `yaml:"parent"`
		Digits int     `yaml:"digits"`
		Sep    *string `yaml:"sep"`
	} `yaml:"settings"`
}

// Document is an ordered collection of items sharing a prefix.
type Document struct {
	prefix Prefix
	parent Prefix
	digits int
	sep    string
	dir    string

	tree      *Tree
	items     []*Item
	removed   []*Item
	validator *schema.Validator
}

func (d *Document) Prefix() Prefix { return d.prefix }
func (d *Document) Parent() Prefix { return d.parent }
func (d *Document) Dir() string { return d.dir }
func (d *Document) Digits() int { return d.digits }
func (d *Document) Sep() string { return d.sep }

// Items returns the items in document order: by level, then UID.
func (d *Document) Items() []*Item {
	out := make([]*Item, len(d.items))
	copy(out, d.items)
	sortItems(out, nil)
	return out
}

// FindItem looks up an item of this document by exact UID.
func (d *Document) FindItem(uid UID) (*Item, error) {
	for _, it := range d.items {
		if it.uid == uid {
			return it, nil
		}
	}
	return nil, errors.NotFound("item", string(uid)).WithDetail("document", string(d.prefix))
}

// AddItem creates a new item numbered after the highest existing number.
// A zero level places it after the last item.
func (d *Document) AddItem(level Level) *Item {
	next := 1
	for _, it := range append(append([]*Item{}, d.items...), d.removed...) {
		if _, _, n, err := ParseUID(string(it.uid)); err == nil && n >= next {
			next = n + 1
		}
	}

	if level.IsZero() {
		items := d.Items()
		if len(items) == 0 {
			level = Level{parts: []int{1}}
		} else {
			level = items[len(items)-1].level.WithHeading(false).Next()
		}
	}

	item := newItem(d, FormatUID(d.prefix, d.sep, d.digits, next), level)
	d.items = append(d.items, item)
	return item
}

// RemoveItem detaches item from the document; its file is deleted on the
// next save.
func (d *Document) RemoveItem(item *Item) (*Item, error) {
	for idx, it := range d.items {
		if it == item {
			d.items = append(d.items[:idx], d.items[idx+1:]...)
			d.removed = append(d.removed, item)
			return item, nil
		}
	}
	return nil, errors.NotFound("item", string(item.uid)).WithDetail("document", string(d.prefix))
}

// Reorder renumbers item levels so that siblings are consecutive and no
// level skips a depth. When two items share a level, keep stays first.
func (d *Document) Reorder(keep *Item) {
	items := make([]*Item, len(d.items))
	copy(items, d.items)
	sortItems(items, keep)

	var counters []int
	for _, it := range items {
		depth := it.level.Depth()
		if depth == 0 {
			depth = 1
		}
		if depth > len(counters)+1 {
			depth = len(counters) + 1
		}
		counters = counters[:min(len(counters), depth)]
		for len(counters) < depth {
			counters = append(counters, 0)
		}
		counters[depth-1]++

		parts := make([]int, len(counters))
		copy(parts, counters)
		it.SetLevel(Level{parts: parts, heading: it.level.Heading()})
	}
}

func (d *Document) itemPath(uid UID) string {
	return filepath.Join(d.dir, string(uid)+".yml")
}

func sortItems(items []*Item, keep *Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if c := items[a].level.Compare(items[b].level); c != 0 {
			return c < 0
		}
		if keep != nil {
			if items[a] == keep {
				return true
			}
			if items[b] == keep {
				return false
			}
		}
		return items[a].uid < items[b].uid
	})
}

func loadDocument(dir string, docValidator, itemValidator *schema.Validator) (*Document, error) {
	settingsPath := filepath.Join(dir, SettingsFile)
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, errors.IOFailure("read", settingsPath, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ParseFailed(settingsPath, err)
	}
	if docValidator != nil {
		if err := docValidator.Validate(raw); err != nil {
			return nil, errors.ParseFailed(settingsPath, err)
		}
	}

	var settings documentSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, errors.ParseFailed(settingsPath, err)
	}

	doc := &Document{
		prefix:    Prefix(settings.Settings.Prefix),
		digits:    settings.Settings.Digits,
		sep:       defaultSep,
		dir:       dir,
		validator: itemValidator,
	}
	if settings.Settings.Parent != nil {
		doc.parent = Prefix(*settings.Settings.Parent)
	}
	if settings.Settings.Sep != nil {
		doc.sep = *settings.Settings.Sep
	}
	if doc.digits == 0 {
		doc.digits = defaultDigits
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.IOFailure("read", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".yml" {
			continue
		}
		uid, prefix, _, err := ParseUID(strings.TrimSuffix(name, ".yml"))
		if err != nil || prefix != doc.prefix {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.IOFailure("read", path, err)
		}
		item, err := decodeItem(doc, uid, path, data)
		if err != nil {
			return nil, err
		}
		doc.items = append(doc.items, item)
	}

	return doc, nil
}

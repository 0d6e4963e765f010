package hierarchy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/schema"
	"github.com/moby/patternmatcher"
)

// DefaultIgnore lists directories never searched for documents.
var DefaultIgnore = []string{".git", ".reqs", "**/node_modules", "**/.venv"}

// FileWriter persists item files. It is replaced in tests to inject failures.
type FileWriter interface {
	WriteFile(path string, data []byte) error
	Remove(path string) error
}

type osWriter struct{}

func (osWriter) WriteFile(path string, data []byte) error { return os.WriteFile(path, data, 0644) }
func (osWriter) Remove(path string) error                 { return os.Remove(path) }

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	ignore   []string
	writer   FileWriter
	validate bool
}

// WithIgnore adds directory patterns (relative to the project root, in
// .dockerignore syntax) that are skipped during discovery.
func WithIgnore(patterns ...string) Option {
	return func(o *loadOptions) {
		o.ignore = append(o.ignore, patterns...)
	}
}

// WithWriter replaces the file writer used by Tree.Save.
func WithWriter(w FileWriter) Option {
	return func(o *loadOptions) {
		o.writer = w
	}
}

// WithoutValidation skips JSON-schema validation of project files.
func WithoutValidation() Option {
	return func(o *loadOptions) {
		o.validate = false
	}
}

// Tree is a loaded project: documents linked by their parent prefixes.
type Tree struct {
	root      string
	rootDoc   *Document
	documents map[Prefix]*Document
	children  map[Prefix][]Prefix
	writer    FileWriter
}

// Load discovers every document below root and builds the tree.
func Load(root string, opts ...Option) (*Tree, error) {
	o := loadOptions{writer: osWriter{}, validate: true}
	o.ignore = append(o.ignore, DefaultIgnore...)
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("project", root).WithDetail("path", root)
		}
		return nil, errors.IOFailure("stat", root, err)
	}
	if !info.IsDir() {
		return nil, errors.ParseFailed(root, fmt.Errorf("not a directory"))
	}

	matcher, err := patternmatcher.New(o.ignore)
	if err != nil {
		return nil, errors.Invalid("ignore", err.Error())
	}

	var docValidator, itemValidator *schema.Validator
	if o.validate {
		if docValidator, err = schema.NewDocumentValidator(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build document validator")
		}
		if itemValidator, err = schema.NewItemValidator(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build item validator")
		}
	}

	var docs []*Document
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.IOFailure("read", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			skip, err := matcher.MatchesOrParentMatches(filepath.ToSlash(rel))
			if err != nil {
				return errors.Invalid("ignore", err.Error())
			}
			if skip {
				return filepath.SkipDir
			}
		}
		if _, err := os.Stat(filepath.Join(path, SettingsFile)); err != nil {
			return nil
		}
		if _, err := os.Stat(filepath.Join(path, SkipFile)); err == nil {
			return nil
		}
		doc, err := loadDocument(path, docValidator, itemValidator)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	tree, err := build(root, docs)
	if err != nil {
		return nil, err
	}
	tree.writer = o.writer
	return tree, nil
}

func build(root string, docs []*Document) (*Tree, error) {
	if len(docs) == 0 {
		return nil, errors.ParseFailed(root, fmt.Errorf("no documents found"))
	}

	tree := &Tree{
		root:      root,
		documents: make(map[Prefix]*Document, len(docs)),
		children:  make(map[Prefix][]Prefix),
	}
	for _, doc := range docs {
		if other, ok := tree.documents[doc.prefix]; ok {
			return nil, errors.ParseFailed(doc.dir, fmt.Errorf("prefix %s already used by %s", doc.prefix, other.dir))
		}
		tree.documents[doc.prefix] = doc
		doc.tree = tree
		if doc.parent == "" {
			if tree.rootDoc != nil {
				return nil, errors.ParseFailed(root, fmt.Errorf("multiple root documents: %s, %s", tree.rootDoc.prefix, doc.prefix))
			}
			tree.rootDoc = doc
		}
	}
	if tree.rootDoc == nil {
		return nil, errors.ParseFailed(root, fmt.Errorf("no root document"))
	}

	for _, doc := range docs {
		if doc.parent == "" {
			continue
		}
		if _, ok := tree.documents[doc.parent]; !ok {
			return nil, errors.ParseFailed(doc.dir, fmt.Errorf("unplaced document %s: no parent %s", doc.prefix, doc.parent))
		}
		tree.children[doc.parent] = append(tree.children[doc.parent], doc.prefix)
	}
	for p := range tree.children {
		sort.Slice(tree.children[p], func(a, b int) bool { return tree.children[p][a] < tree.children[p][b] })
	}

	// A parent cycle leaves documents unreachable from the root.
	if n := len(tree.Documents()); n != len(docs) {
		return nil, errors.ParseFailed(root, fmt.Errorf("%d documents are not reachable from root %s", len(docs)-n, tree.rootDoc.prefix))
	}
	return tree, nil
}

// Root is the project directory the tree was loaded from.
func (t *Tree) Root() string { return t.root }

// Documents returns the documents depth-first from the root, children in
// prefix order.
func (t *Tree) Documents() []*Document {
	var out []*Document
	var walk func(p Prefix)
	walk = func(p Prefix) {
		out = append(out, t.documents[p])
		for _, c := range t.children[p] {
			walk(c)
		}
	}
	walk(t.rootDoc.prefix)
	return out
}

// FindDocument looks up a document by exact prefix.
func (t *Tree) FindDocument(prefix Prefix) (*Document, error) {
	if doc, ok := t.documents[prefix]; ok {
		return doc, nil
	}
	return nil, errors.NotFound("document", string(prefix))
}

// FindItem looks up an item anywhere in the tree by exact UID.
func (t *Tree) FindItem(uid UID) (*Item, error) {
	if doc, ok := t.documents[uid.Prefix()]; ok {
		if item, err := doc.FindItem(uid); err == nil {
			return item, nil
		}
	}
	return nil, errors.NotFound("item", string(uid))
}

// Dirty reports whether any item has unsaved edits or removals.
func (t *Tree) Dirty() bool {
	for _, doc := range t.documents {
		if len(doc.removed) > 0 {
			return true
		}
		for _, it := range doc.items {
			if it.dirty {
				return true
			}
		}
	}
	return false
}

// Save writes every dirty item and deletes removed ones. It keeps going
// after a failure and returns every failure it met; items that failed stay
// dirty so a later Save retries them.
func (t *Tree) Save() []error {
	var failures []error
	for _, doc := range t.Documents() {
		var stillRemoved []*Item
		for _, it := range doc.removed {
			if err := t.writer.Remove(it.path); err != nil && !os.IsNotExist(err) {
				failures = append(failures, errors.IOFailure("delete", it.path, err).WithDetail("uid", string(it.uid)))
				stillRemoved = append(stillRemoved, it)
			}
		}
		doc.removed = stillRemoved

		for _, it := range doc.Items() {
			if !it.dirty {
				continue
			}
			data, err := it.encode()
			if err != nil {
				failures = append(failures, errors.Wrap(err, errors.ErrCodeInternal, "encode item").WithDetail("uid", string(it.uid)))
				continue
			}
			if err := t.writer.WriteFile(it.path, data); err != nil {
				failures = append(failures, errors.IOFailure("write", it.path, err).WithDetail("uid", string(it.uid)))
				continue
			}
			it.dirty = false
		}
	}
	return failures
}

package state

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/grovetools/reqs/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// newStore returns a store with the sample project path set, not loaded.
func newStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	root := testutil.WriteProject(t, dir)

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s := NewStore(Seed(dir).withProjectPath(root), opts...)
	return s, root
}

// loadedStore returns a store with the sample project loaded.
func loadedStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	s, root := newStore(t, opts...)
	mustDispatch(t, s, LoadProject{})
	return s, root
}

func mustDispatch(t *testing.T, s *Store, a Action) {
	t.Helper()
	res := s.Dispatch(a)
	require.True(t, res.OK, "%s failed: %v", Name(a), res.Err())
}

func (s State) withProjectPath(p string) State {
	next := s.clone()
	next.projectPath = p
	return next
}

func item(t *testing.T, s *Store, uid hierarchy.UID) *hierarchy.Item {
	t.Helper()
	it, err := s.State().Tree().FindItem(uid)
	require.NoError(t, err)
	return it
}

type failingWriter struct {
	fail map[string]bool
}

func (w failingWriter) WriteFile(path string, data []byte) error {
	if w.fail[filepath.Base(path)] {
		return fmt.Errorf("disk full")
	}
	return os.WriteFile(path, data, 0644)
}

func (w failingWriter) Remove(path string) error { return os.Remove(path) }

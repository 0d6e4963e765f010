package state

import (
	"sync"
	"testing"

	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/pkg/hierarchy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverOrdering(t *testing.T) {
	s, _ := loadedStore(t)

	var calls []string
	var seen []hierarchy.UID
	for _, name := range []string{"A", "B", "C"} {
		name := name
		s.AddObserver(func(store *Store) {
			calls = append(calls, name)
			seen = append(seen, store.State().Principal())
		})
	}

	mustDispatch(t, s, SelectItems{UIDs: []hierarchy.UID{"REQ-002"}})

	assert.Equal(t, []string{"A", "B", "C"}, calls)
	assert.Equal(t, []hierarchy.UID{"REQ-002", "REQ-002", "REQ-002"}, seen)
}

func TestObserversRunOnFailedDispatch(t *testing.T) {
	s, _ := loadedStore(t)
	calls := 0
	s.AddObserver(func(*Store) { calls++ })

	res := s.Dispatch(SetItemText{UID: "REQ-999", Text: "x"})
	assert.False(t, res.OK)
	assert.Equal(t, 1, calls)
}

func TestAddObserverInitialNotify(t *testing.T) {
	t.Run("off by default", func(t *testing.T) {
		s, _ := newStore(t)
		calls := 0
		s.AddObserver(func(*Store) { calls++ })
		assert.Equal(t, 0, calls)
	})

	t.Run("enabled", func(t *testing.T) {
		s, _ := newStore(t, WithInitialNotify())
		calls := 0
		s.AddObserver(func(*Store) { calls++ })
		assert.Equal(t, 1, calls)
	})
}

func TestRemoveObserver(t *testing.T) {
	s, _ := loadedStore(t)
	var calls []string
	removeA := s.AddObserver(func(*Store) { calls = append(calls, "A") })
	s.AddObserver(func(*Store) { calls = append(calls, "B") })

	removeA()
	removeA()
	mustDispatch(t, s, SetLinkFilter{Text: "x"})
	assert.Equal(t, []string{"B"}, calls)
}

func TestReentrantDispatchRejected(t *testing.T) {
	s, _ := loadedStore(t)

	var inner Result
	s.AddObserver(func(store *Store) {
		if store.State().LinkFilter() == "outer" {
			inner = store.Dispatch(SetLinkFilter{Text: "inner"})
		}
	})

	mustDispatch(t, s, SetLinkFilter{Text: "outer"})

	require.False(t, inner.OK)
	assert.True(t, errors.Is(inner.Err(), errors.ErrCodeDispatchBusy))
	assert.Equal(t, "outer", s.State().LinkFilter())
}

func TestConcurrentDispatchNeverInterleaves(t *testing.T) {
	s, _ := loadedStore(t)

	var mu sync.Mutex
	inside := 0
	maxInside := 0
	s.AddObserver(func(*Store) {
		mu.Lock()
		inside++
		if inside > maxInside {
			maxInside = inside
		}
		mu.Unlock()

		mu.Lock()
		inside--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	var okCount, busyCount int
	var countMu sync.Mutex
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.Dispatch(SetLinkFilter{Text: "x"})
			countMu.Lock()
			defer countMu.Unlock()
			if res.OK {
				okCount++
			} else if errors.Is(res.Err(), errors.ErrCodeDispatchBusy) {
				busyCount++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, okCount+busyCount)
	assert.GreaterOrEqual(t, okCount, 1)
	assert.Equal(t, 1, maxInside)
}

func TestStateSnapshotsAreIndependent(t *testing.T) {
	s, _ := loadedStore(t)
	mustDispatch(t, s, SelectItems{UIDs: []hierarchy.UID{"REQ-001", "REQ-002"}})

	snap := s.State()
	items := snap.SelectedItems()
	items[0] = "TST-001"

	mustDispatch(t, s, SelectItems{UIDs: []hierarchy.UID{"REQ-003"}})

	assert.Equal(t, []hierarchy.UID{"REQ-001", "REQ-002"}, snap.SelectedItems())
	assert.Equal(t, []hierarchy.UID{"REQ-003"}, s.State().SelectedItems())
}

func TestItemsOrFirst(t *testing.T) {
	s, _ := loadedStore(t)
	assert.Equal(t, []hierarchy.UID{"REQ-001"}, s.State().ItemsOrFirst())

	mustDispatch(t, s, SelectDocument{Prefix: "TST"})
	assert.Equal(t, []hierarchy.UID{"TST-001"}, s.State().ItemsOrFirst())
	assert.Empty(t, s.State().SelectedItems())

	mustDispatch(t, s, CloseProject{})
	assert.Nil(t, s.State().ItemsOrFirst())
	assert.Nil(t, s.State().DocumentOrFirst())
}

func TestSessionID(t *testing.T) {
	a, _ := newStore(t)
	b, _ := newStore(t)
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

package state

import (
	"context"
	"testing"
	"time"

	"github.com/grovetools/reqs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDispatchesInArrivalOrder(t *testing.T) {
	s, _ := loadedStore(t)

	var order []string
	s.AddObserver(func(store *Store) {
		order = append(order, store.State().LinkFilter())
	})

	q := NewQueue(s)
	var results []<-chan Result
	for _, f := range []string{"a", "b", "c"} {
		results = append(results, q.Submit(SetLinkFilter{Text: f}))
	}
	assert.Equal(t, 3, q.Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	for _, ch := range results {
		select {
		case res := <-ch:
			assert.True(t, res.OK)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for dispatch")
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	res := <-q.Submit(SetLinkFilter{Text: "late"})
	assert.False(t, res.OK)
	assert.True(t, errors.Is(res.Err(), errors.ErrCodeInternal))
	assert.Equal(t, "c", s.State().LinkFilter())
}

func TestQueueObserversMaySubmit(t *testing.T) {
	s, _ := loadedStore(t)
	q := NewQueue(s)

	followUp := make(chan (<-chan Result), 1)
	s.AddObserver(func(store *Store) {
		if store.State().LinkFilter() == "first" {
			followUp <- q.Submit(SetLinkFilter{Text: "second"})
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	require.True(t, (<-q.Submit(SetLinkFilter{Text: "first"})).OK)
	require.True(t, (<-<-followUp).OK)
	assert.Equal(t, "second", s.State().LinkFilter())
}

func TestQueueDoesNotDispatchAfterCancel(t *testing.T) {
	s, _ := loadedStore(t)
	q := NewQueue(s)
	pending := q.Submit(SetLinkFilter{Text: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, q.Run(ctx), context.Canceled)

	res := <-pending
	assert.False(t, res.OK)
	assert.True(t, errors.Is(res.Err(), errors.ErrCodeInternal))
	assert.Empty(t, s.State().LinkFilter())
	assert.Zero(t, q.Len())
}

package state

import (
	"context"
	"sync"

	"github.com/grovetools/reqs/errors"
)

type queued struct {
	action Action
	done   chan Result
}

// Queue feeds a Store from several producers. Actions are dispatched one at
// a time, in the order they were submitted, on the goroutine running Run.
type Queue struct {
	store *Store

	mu      sync.Mutex
	pending []queued
	stopped bool
	wake    chan struct{}
}

// NewQueue creates a queue in front of store.
func NewQueue(store *Store) *Queue {
	return &Queue{
		store: store,
		wake:  make(chan struct{}, 1),
	}
}

// Submit enqueues action without blocking. The returned channel receives
// the dispatch result once observers have run. After Run has returned the
// result is an immediate INTERNAL_ERROR.
func (q *Queue) Submit(action Action) <-chan Result {
	done := make(chan Result, 1)

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		done <- stoppedResult(action)
		return done
	}
	q.pending = append(q.pending, queued{action: action, done: done})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return done
}

// Run dispatches submitted actions until ctx is done. Actions still queued
// when ctx ends are answered with a failure and never dispatched.
func (q *Queue) Run(ctx context.Context) error {
	for {
		for ctx.Err() == nil {
			next, ok := q.pop()
			if !ok {
				break
			}
			next.done <- q.store.Dispatch(next.action)
		}

		select {
		case <-ctx.Done():
			q.stop()
			return ctx.Err()
		case <-q.wake:
		}
	}
}

// Len returns the number of actions waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) pop() (queued, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return queued{}, false
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	return next, true
}

func (q *Queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	for _, p := range q.pending {
		p.done <- stoppedResult(p.action)
	}
	q.pending = nil
}

func stoppedResult(action Action) Result {
	return Result{Errors: []error{
		errors.New(errors.ErrCodeInternal, "dispatch queue stopped").WithDetail("action", Name(action)),
	}}
}

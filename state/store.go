package state

import (
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/logging"
	"github.com/grovetools/reqs/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// Observer is called after every dispatch. It reads the post-dispatch
// snapshot through store.State() and must not call Dispatch synchronously.
type Observer func(store *Store)

// Result reports the outcome of one dispatch.
type Result struct {
	OK     bool
	Errors []error
}

// Err joins the failures, or returns nil when the dispatch succeeded.
func (r Result) Err() error {
	return stderrors.Join(r.Errors...)
}

type observerEntry struct {
	id int
	fn Observer
}

// Store holds the current State, serializes dispatch and notifies observers
// in registration order.
type Store struct {
	// dispatchMu is held for the whole of a dispatch, observers included.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     State
	observers []observerEntry
	nextID    int

	loader        Loader
	logger        *logrus.Entry
	initialNotify bool
	session       string
}

// Option configures a Store.
type Option func(*Store)

// WithLoader sets how LoadProject opens projects. The default is
// HierarchyLoader().
func WithLoader(l Loader) Option {
	return func(s *Store) { s.loader = l }
}

// WithLogger sets the logger dispatches are traced to.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.logger = l }
}

// WithInitialNotify makes AddObserver call the new observer once right away,
// so views can paint without a separate refresh.
func WithInitialNotify() Option {
	return func(s *Store) { s.initialNotify = true }
}

// NewStore creates a Store seeded with seed.
func NewStore(seed State, opts ...Option) *Store {
	s := &Store{
		state:   seed.clone(),
		loader:  HierarchyLoader(),
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewLogger("store")
	}
	s.logger = s.logger.WithField("session", s.session)
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SessionID identifies this store in logs.
func (s *Store) SessionID() string { return s.session }

// AddObserver appends fn to the registry and returns a function that
// removes it again.
func (s *Store) AddObserver(fn Observer) (remove func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	s.mu.Unlock()

	if s.initialNotify {
		fn(s)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch reduces action against the current state, replaces the state and
// notifies every observer in registration order. A dispatch that overlaps
// another one, including one made from inside an observer, is rejected with
// DISPATCH_BUSY and changes nothing.
func (s *Store) Dispatch(action Action) Result {
	if !s.dispatchMu.TryLock() {
		err := errors.Busy(Name(action))
		s.logger.WithField("action", Name(action)).Warn("Rejected overlapping dispatch")
		return Result{Errors: []error{err}}
	}
	defer s.dispatchMu.Unlock()
	defer profiling.Start("dispatch " + Name(action)).Stop()

	start := time.Now()
	current := s.State()
	outcome := s.reduce(current, action)

	s.mu.Lock()
	s.state = outcome.State
	observers := make([]observerEntry, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(s)
	}

	result := Result{OK: len(outcome.Errors) == 0, Errors: outcome.Errors}

	fields := logrus.Fields{
		"action":    Name(action),
		"effect":    IsEffect(action),
		"failures":  len(result.Errors),
		"pending":   outcome.State.PendingChange(),
		"observers": len(observers),
		"duration":  time.Since(start),
	}
	if result.OK {
		s.logger.WithFields(fields).Debug("Dispatched action")
	} else {
		s.logger.WithFields(fields).WithError(result.Err()).Debug("Dispatched action with failures")
	}

	return result
}

// reduce runs the reducer and turns a panic into an internal failure with
// the state unchanged.
func (s *Store) reduce(current State, action Action) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = fail(current, errors.New(errors.ErrCodeInternal, fmt.Sprintf("%s panicked: %v", Name(action), r)))
		}
	}()
	return Reduce(current, action, s.loader)
}

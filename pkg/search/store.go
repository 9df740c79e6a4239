// Package search holds the state of an interactive AUR search: the query being
// edited, the last query sent, and the status of the lookup. A Store is owned
// by a single session and mediates de-duplication of repeated searches.
package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/glorpus-work/aurseek/internal/logger"
	"github.com/glorpus-work/aurseek/pkg/aur"
)

// Store is the search state of one session.
//
// At most one lookup is in flight at a time. Every dispatch records a
// generation; Clear, Close and emptying the query text advance it, and a
// completion carrying an older generation is dropped.
type Store struct {
	lookup Lookuper
	log    *slog.Logger

	mu            sync.Mutex
	current       aur.Query
	lastSubmitted aur.Query
	status        aur.Status
	generation    uint64
	cancel        context.CancelFunc
	closed        bool
	observers     map[int]Observer
	nextObserver  int

	// notifyMu serializes transitions and their notifications. It is always
	// taken before mu, and observers run with only notifyMu held.
	notifyMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithMode sets the initial query mode.
func WithMode(mode aur.QueryMode) Option {
	return func(s *Store) {
		s.current.Mode = mode
	}
}

// NewStore creates an idle store that resolves queries with lookup.
func NewStore(lookup Lookuper, opts ...Option) *Store {
	s := &Store{
		lookup:    lookup,
		status:    aur.Idle(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.GetLogger()
	}
	return s
}

// Status returns the current lookup status.
func (s *Store) Status() aur.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Query returns the query currently being edited.
func (s *Store) Query() aur.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastSubmitted returns the query of the most recent dispatched lookup.
func (s *Store) LastSubmitted() aur.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSubmitted
}

// SetText replaces the query text. Emptying the text returns the store to
// Idle and abandons any in-flight lookup.
func (s *Store) SetText(text string) {
	s.lockTransition()
	s.current.Text = text
	if text != "" {
		s.unlockTransition()
		return
	}
	s.resetAndNotify()
}

// SetMode replaces the query mode.
func (s *Store) SetMode(mode aur.QueryMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Mode = mode
}

// SetQuery replaces text and mode at once.
func (s *Store) SetQuery(q aur.Query) {
	s.mu.Lock()
	s.current.Mode = q.Mode
	s.mu.Unlock()
	s.SetText(q.Text)
}

// Submit dispatches the current query.
//
// It returns nil when nothing was dispatched: the text is empty, a lookup is
// already in flight, the query equals the last submitted one and the last
// lookup did not fail, or the store is closed. Otherwise the returned channel
// receives the resolved status once it has been applied, or is closed without
// a value if the lookup was abandoned first.
func (s *Store) Submit(ctx context.Context) <-chan aur.Status {
	s.lockTransition()
	text := s.current.Text
	switch {
	case s.closed:
		s.unlockTransition()
		return nil
	case s.current.IsEmpty():
		s.resetAndNotify()
		return nil
	case s.status.Kind == aur.StatusLoading:
		s.unlockTransition()
		s.log.Debug("search already in flight, dropping submit", "query", text)
		return nil
	case s.current.Equal(s.lastSubmitted) && s.status.Kind != aur.StatusFailure:
		s.unlockTransition()
		s.log.Debug("duplicate search, keeping current status", "query", text)
		return nil
	}

	q := s.current
	s.lastSubmitted = q
	s.generation++
	generation := s.generation
	lookupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.status = aur.Loading()

	s.log.Debug("dispatching search", "query", q.Text, "mode", q.Mode.String(), "generation", generation)
	s.notifyAndUnlock()

	done := make(chan aur.Status, 1)
	go s.run(lookupCtx, cancel, generation, q, done)
	return done
}

func (s *Store) run(ctx context.Context, cancel context.CancelFunc, generation uint64, q aur.Query, done chan<- aur.Status) {
	defer close(done)
	defer cancel()

	result := s.lookup.Lookup(ctx, q)

	s.lockTransition()
	if s.closed || generation != s.generation {
		s.unlockTransition()
		s.log.Debug("discarding stale search result", "query", q.Text, "generation", generation)
		return
	}
	s.status = result
	s.cancel = nil
	done <- result

	if result.Kind == aur.StatusFailure {
		s.log.Debug("search failed", "query", q.Text, "message", result.Message)
	} else {
		s.log.Debug("search resolved", "query", q.Text, "results", len(result.Results()))
	}
	s.notifyAndUnlock()
}

// Clear resets the query text and returns the store to Idle from any state.
func (s *Store) Clear() {
	s.lockTransition()
	s.current.Text = ""
	s.resetAndNotify()
}

// Close tears the store down. Results of lookups still in flight are
// discarded, later submits are ignored and observers are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status = aur.Idle()
	s.observers = make(map[int]Observer)
}

// Subscribe registers fn to be called after every status transition. The
// returned function removes the observer. Observers run synchronously and may
// read the store, but must not call Submit, Clear, SetText or SetQuery on it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// resetAndNotify must be called inside lockTransition and ends it. Both query
// texts are cleared so that the next submit is never treated as a duplicate.
func (s *Store) resetAndNotify() {
	s.lastSubmitted.Text = ""
	if s.status.Kind == aur.StatusIdle && s.cancel == nil {
		s.unlockTransition()
		return
	}
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status = aur.Idle()
	s.notifyAndUnlock()
}

func (s *Store) lockTransition() {
	s.notifyMu.Lock()
	s.mu.Lock()
}

func (s *Store) unlockTransition() {
	s.mu.Unlock()
	s.notifyMu.Unlock()
}

// notifyAndUnlock must be called inside lockTransition and ends it. Observers
// run after mu is released, so they can read the store.
func (s *Store) notifyAndUnlock() {
	status := s.status
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range observers {
		fn(status)
	}
}

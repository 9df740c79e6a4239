// Package session wires the search store, history store and selection holder
// of one user session together. Sessions are created and torn down
// explicitly and passed to whatever renders them.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/glorpus-work/aurseek/internal/logger"
	"github.com/glorpus-work/aurseek/pkg/aur"
	"github.com/glorpus-work/aurseek/pkg/errors"
	"github.com/glorpus-work/aurseek/pkg/history"
	"github.com/glorpus-work/aurseek/pkg/search"
	"github.com/glorpus-work/aurseek/pkg/selection"
)

// Session owns the state of one interactive search session.
type Session struct {
	id        string
	client    aur.Client
	search    *search.Store
	history   history.Store
	selection *selection.Holder
	log       *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

type options struct {
	mode aur.QueryMode
	log  *slog.Logger
}

// Option configures a Session.
type Option func(*options)

// WithDefaultMode sets the query mode the session starts with.
func WithDefaultMode(mode aur.QueryMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithLogger sets the base logger; the session adds its id to every record.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// New creates a session using client for lookups and hist for history. The
// session takes ownership of hist and closes it in Close.
func New(client aur.Client, hist history.Store, opts ...Option) *Session {
	o := options{mode: aur.ModePackage}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetLogger()
	}

	id := uuid.NewString()
	log := o.log.With("session", id)

	return &Session{
		id:        id,
		client:    client,
		search:    search.NewStore(client, search.WithMode(o.mode), search.WithLogger(log)),
		history:   hist,
		selection: selection.NewHolder(),
		log:       log,
		closed:    make(chan struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// SearchStore returns the session's search state.
func (s *Session) SearchStore() *search.Store {
	return s.search
}

// History returns the session's history store.
func (s *Session) History() history.Store {
	return s.history
}

// Selection returns the session's detail selection.
func (s *Session) Selection() *selection.Holder {
	return s.selection
}

// Search sets the query, submits it and waits for the lookup to resolve. When
// the submit is de-duplicated or dropped the current status is returned as is.
func (s *Session) Search(ctx context.Context, q aur.Query) (aur.Status, error) {
	if s.isClosed() {
		return aur.Idle(), ErrSessionClosed
	}

	s.search.SetQuery(q)
	pending := s.search.Submit(ctx)
	if pending == nil {
		return s.search.Status(), nil
	}

	select {
	case status, ok := <-pending:
		if !ok {
			return s.search.Status(), ErrSearchAbandoned
		}
		return status, nil
	case <-ctx.Done():
		return s.search.Status(), ctx.Err()
	case <-s.closed:
		return aur.Idle(), ErrSearchAbandoned
	}
}

// Select records item in the history and then makes it the current
// selection. When the history write fails the error is returned and the
// selection is left unchanged.
func (s *Session) Select(ctx context.Context, item selection.Item) (history.Entry, error) {
	if s.isClosed() {
		return history.Entry{}, ErrSessionClosed
	}

	pkg := item.Summary()
	entry, err := s.history.Append(ctx, pkg)
	if err != nil {
		s.log.Error("failed to record selection", "package", pkg.Name, "error", err)
		return history.Entry{}, errors.Wrapf(err, "failed to record %s in history", pkg.Name)
	}

	s.selection.Select(item)
	s.log.Debug("package selected", "package", pkg.Name, "history_id", entry.ID)
	return entry, nil
}

// Inspect fetches the detail record of name and makes it the current
// selection without touching the history.
func (s *Session) Inspect(ctx context.Context, name string) (aur.PackageDetail, error) {
	if s.isClosed() {
		return aur.PackageDetail{}, ErrSessionClosed
	}

	detail, err := s.fetchDetail(ctx, name)
	if err != nil {
		return aur.PackageDetail{}, err
	}
	s.selection.Select(detail)
	return detail, nil
}

// SelectName fetches the detail record of name, records it in the history and
// selects it.
func (s *Session) SelectName(ctx context.Context, name string) (aur.PackageDetail, history.Entry, error) {
	if s.isClosed() {
		return aur.PackageDetail{}, history.Entry{}, ErrSessionClosed
	}

	detail, err := s.fetchDetail(ctx, name)
	if err != nil {
		return aur.PackageDetail{}, history.Entry{}, err
	}
	entry, err := s.Select(ctx, detail)
	if err != nil {
		return aur.PackageDetail{}, history.Entry{}, err
	}
	return detail, entry, nil
}

func (s *Session) fetchDetail(ctx context.Context, name string) (aur.PackageDetail, error) {
	details, err := s.client.Info(ctx, name)
	if err != nil {
		return aur.PackageDetail{}, errors.Wrapf(err, "failed to fetch details for %s", name)
	}
	for _, detail := range details {
		if detail.Name == name {
			return detail, nil
		}
	}
	return aur.PackageDetail{}, errors.Wrapf(aur.ErrPackageNotFound, "%s", name)
}

// Update reports a history entry whose package has a newer version in the AUR.
type Update struct {
	Entry  history.Entry `json:"entry" yaml:"entry"`
	Latest string        `json:"latest" yaml:"latest"`
}

// Outdated checks the packages in entries against the AUR. Only the first
// entry of each package name is considered, so pass entries newest first.
func (s *Session) Outdated(ctx context.Context, entries []history.Entry) ([]Update, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	var (
		names  []string
		latest = make(map[string]history.Entry)
	)
	for _, entry := range entries {
		if _, seen := latest[entry.Package.Name]; seen {
			continue
		}
		latest[entry.Package.Name] = entry
		names = append(names, entry.Package.Name)
	}
	if len(names) == 0 {
		return nil, nil
	}

	details, err := s.client.Info(ctx, names...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch current versions")
	}
	current := make(map[string]string, len(details))
	for _, detail := range details {
		current[detail.Name] = detail.Version
	}

	var updates []Update
	for _, name := range names {
		version, ok := current[name]
		if !ok {
			continue
		}
		entry := latest[name]
		if aur.IsNewerVersion(entry.Package.Version, version) {
			updates = append(updates, Update{Entry: entry, Latest: version})
		}
	}
	return updates, nil
}

// Close tears the session down: in-flight searches are abandoned and the
// history store is closed.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		s.search.Close()
		err = s.history.Close()
	})
	return err
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

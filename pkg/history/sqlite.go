package history

import (
	"context"
	"database/sql"
	"iter"
	"sync"
	"time"

	"github.com/glorpus-work/aurseek/pkg/aur"
	"github.com/glorpus-work/aurseek/pkg/fsutil"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const migration = `
CREATE TABLE IF NOT EXISTS history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    package_base TEXT NOT NULL DEFAULT '',
    version TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    maintainer TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    num_votes INTEGER NOT NULL DEFAULT 0,
    popularity REAL NOT NULL DEFAULT 0,
    last_modified INTEGER NOT NULL DEFAULT 0,
    inserted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_name ON history(name);
`

const selectColumns = `
	SELECT id, name, package_base, version, description, maintainer, url,
	       num_votes, popularity, last_modified, inserted_at
	FROM history
`

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time

	mu        sync.Mutex
	closed    bool
	observers map[int]func(Entry)
	next      int
}

// Open opens (creating if needed) the history database at path. Pass
// MemoryPath for a database that lives only as long as the store.
func Open(path string) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := fsutil.EnsureFileDir(path, fsutil.DirModeSecure); err != nil {
			return nil, persistenceError(err, "failed to create history directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, persistenceError(err, "failed to open history database")
	}
	// One connection: an in-memory database is per connection, and a single
	// writer keeps appends ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, persistenceError(err, "failed to configure history database")
	}
	if _, err := db.Exec(migration); err != nil {
		_ = db.Close()
		return nil, persistenceError(err, "failed to run history migrations")
	}

	return &SQLiteStore{
		db:        db,
		path:      path,
		now:       time.Now,
		observers: make(map[int]func(Entry)),
	}, nil
}

// Path returns the database path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Append inserts a new entry for pkg.
func (s *SQLiteStore) Append(ctx context.Context, pkg aur.PackageSummary) (Entry, error) {
	if s.isClosed() {
		return Entry{}, ErrStoreClosed
	}

	insertedAt := s.now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO history (
			name, package_base, version, description, maintainer, url,
			num_votes, popularity, last_modified, inserted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		pkg.Name,
		pkg.PackageBase,
		pkg.Version,
		pkg.Description,
		pkg.Maintainer,
		pkg.URL,
		pkg.NumVotes,
		pkg.Popularity,
		pkg.LastModified,
		insertedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, persistenceError(err, "failed to append history entry")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Entry{}, persistenceError(err, "failed to read history entry id")
	}

	entry := Entry{ID: id, Package: storedSummary(pkg), InsertedAt: insertedAt}
	s.notify(entry)
	return entry, nil
}

// All returns every entry in append order.
func (s *SQLiteStore) All(ctx context.Context) ([]Entry, error) {
	return s.since(ctx, 0)
}

// Entries iterates over the log in append order. Iteration stops at the
// first error, which is yielded with a zero Entry. The store must not be
// written to from inside the loop body.
func (s *SQLiteStore) Entries(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if s.isClosed() {
			yield(Entry{}, ErrStoreClosed)
			return
		}
		rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY id ASC")
		if err != nil {
			yield(Entry{}, persistenceError(err, "failed to query history"))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, persistenceError(err, "failed to read history"))
		}
	}
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, selectColumns+" ORDER BY id DESC LIMIT ?", limit)
}

// since returns entries with an id greater than afterID in append order.
func (s *SQLiteStore) since(ctx context.Context, afterID int64) ([]Entry, error) {
	return s.query(ctx, selectColumns+" WHERE id > ? ORDER BY id ASC", afterID)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]Entry, error) {
	if s.isClosed() {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistenceError(err, "failed to query history")
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError(err, "failed to read history")
	}
	return entries, nil
}

// Subscribe registers fn to be called after every successful Append on this
// store. The returned function removes it.
func (s *SQLiteStore) Subscribe(fn func(Entry)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.observers = make(map[int]func(Entry))
	s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return persistenceError(err, "failed to close history database")
	}
	return nil
}

func (s *SQLiteStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *SQLiteStore) notify(entry Entry) {
	s.mu.Lock()
	observers := make([]func(Entry), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(entry)
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry      Entry
		insertedAt int64
	)
	err := row.Scan(
		&entry.ID,
		&entry.Package.Name,
		&entry.Package.PackageBase,
		&entry.Package.Version,
		&entry.Package.Description,
		&entry.Package.Maintainer,
		&entry.Package.URL,
		&entry.Package.NumVotes,
		&entry.Package.Popularity,
		&entry.Package.LastModified,
		&insertedAt,
	)
	if err != nil {
		return Entry{}, persistenceError(err, "failed to scan history entry")
	}
	entry.InsertedAt = time.Unix(0, insertedAt).UTC()
	return entry, nil
}

// storedSummary keeps the fields the history table persists, so that an
// appended entry equals the one read back.
func storedSummary(pkg aur.PackageSummary) aur.PackageSummary {
	return aur.PackageSummary{
		Name:         pkg.Name,
		PackageBase:  pkg.PackageBase,
		Version:      pkg.Version,
		Description:  pkg.Description,
		Maintainer:   pkg.Maintainer,
		URL:          pkg.URL,
		NumVotes:     pkg.NumVotes,
		Popularity:   pkg.Popularity,
		LastModified: pkg.LastModified,
	}
}

var _ Store = (*SQLiteStore)(nil)

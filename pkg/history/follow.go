package history

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/glorpus-work/aurseek/internal/logger"
)

// Follow streams entries with an id greater than afterID, including entries
// appended later by other processes sharing the database file. The channel is
// closed when ctx is done or the watcher fails.
func (s *SQLiteStore) Follow(ctx context.Context, afterID int64) (<-chan Entry, error) {
	if s.path == MemoryPath {
		return nil, ErrFollowUnsupported
	}
	if s.isClosed() {
		return nil, ErrStoreClosed
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, persistenceError(err, "failed to create history watcher")
	}
	// Watch the directory: SQLite writes through journal files next to the database.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, persistenceError(err, "failed to watch history directory")
	}

	out := make(chan Entry)
	go s.follow(ctx, watcher, afterID, out)
	return out, nil
}

func (s *SQLiteStore) follow(ctx context.Context, watcher *fsnotify.Watcher, lastID int64, out chan<- Entry) {
	defer close(out)
	defer func() { _ = watcher.Close() }()

	base := filepath.Base(s.path)

	// Catch up before waiting so that appends racing watcher.Add are not missed.
	lastID, ok := s.emitSince(ctx, lastID, out)
	if !ok {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-watcher.Events:
			if !open {
				return
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if lastID, ok = s.emitSince(ctx, lastID, out); !ok {
				return
			}
		case err, open := <-watcher.Errors:
			if !open {
				return
			}
			logger.Warn("history watcher error", logger.Fields{"path": s.path, "error": err.Error()})
		}
	}
}

// emitSince sends entries newer than lastID and returns the new high-water mark.
// It reports false when following should stop.
func (s *SQLiteStore) emitSince(ctx context.Context, lastID int64, out chan<- Entry) (int64, bool) {
	entries, err := s.since(ctx, lastID)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("failed to read new history entries", logger.Fields{"path": s.path, "error": err.Error()})
		}
		return lastID, ctx.Err() == nil && !s.isClosed()
	}
	for _, entry := range entries {
		select {
		case out <- entry:
			lastID = entry.ID
		case <-ctx.Done():
			return lastID, false
		}
	}
	return lastID, true
}

//go:generate mockgen -destination=mocks/store.go . Store
package history

import (
	"context"
	"iter"

	"github.com/glorpus-work/aurseek/pkg/aur"
)

// Store is an append-only log of selected packages.
type Store interface {
	// Append records pkg. The entry is durable once Append returns nil.
	Append(ctx context.Context, pkg aur.PackageSummary) (Entry, error)

	// All returns every entry in append order.
	All(ctx context.Context) ([]Entry, error)

	// Entries iterates over every entry in append order. Each iteration reads
	// the log as it is at that moment.
	Entries(ctx context.Context) iter.Seq2[Entry, error]

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Subscribe registers fn to be called after each successful Append.
	Subscribe(fn func(Entry)) func()

	Close() error
}

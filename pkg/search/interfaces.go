//go:generate mockgen -destination=mocks/lookuper.go . Lookuper
package search

import (
	"context"

	"github.com/glorpus-work/aurseek/pkg/aur"
)

// Lookuper resolves a query into a final status. Implementations never
// return Idle or Loading and report every failure as a Failure status.
type Lookuper interface {
	Lookup(ctx context.Context, q aur.Query) aur.Status
}

// Observer is notified after every status transition of a Store.
type Observer func(aur.Status)

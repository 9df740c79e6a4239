package history

import (
	"github.com/glorpus-work/aurseek/pkg/errors"
)

var (
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.Wrap(errors.ErrPersistence, "history store is closed")

	// ErrFollowUnsupported is returned when following an in-memory store.
	ErrFollowUnsupported = errors.Wrap(errors.ErrPersistence, "following requires a file-backed history")
)

func persistenceError(err error, msg string) error {
	return errors.WithKind(errors.ErrPersistence, errors.Wrap(err, msg))
}

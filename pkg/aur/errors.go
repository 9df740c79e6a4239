package aur

import (
	"github.com/glorpus-work/aurseek/pkg/errors"
)

// APIError is returned when the RPC answered with an error string.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match errors.ErrApplication.
func (e *APIError) Unwrap() error {
	return errors.ErrApplication
}

var (
	// ErrNoPackageNames is returned by Info when called without names.
	ErrNoPackageNames = errors.Wrap(errors.ErrApplication, "no package names given")
	// ErrPackageNotFound is returned when an info request matched nothing.
	ErrPackageNotFound = errors.Wrap(errors.ErrApplication, "package not found")
)

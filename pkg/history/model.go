// Package history persists the packages a user selected from search results.
package history

import (
	"time"

	"github.com/glorpus-work/aurseek/pkg/aur"
)

// Entry is one selection. The same package may appear many times.
type Entry struct {
	ID         int64              `json:"id" yaml:"id"`
	Package    aur.PackageSummary `json:"package" yaml:"package"`
	InsertedAt time.Time          `json:"inserted_at" yaml:"inserted_at"`
}

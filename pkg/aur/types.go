// Package aur is a client for the Arch User Repository RPC interface (v5).
// It performs a single read-only request per call and maps the outcome onto a
// Status that presentation layers can render without further error handling.
package aur

import (
	"strings"
	"time"

	"github.com/glorpus-work/aurseek/pkg/errors"
)

// QueryMode selects which AUR search facet a query targets.
type QueryMode int

const (
	// ModePackage searches package names.
	ModePackage QueryMode = iota
	// ModeMakeDepends searches for packages that build-depend on the query.
	ModeMakeDepends
	// ModeUser searches packages maintained by the given user.
	ModeUser
)

// String returns the display name of the mode.
func (m QueryMode) String() string {
	switch m {
	case ModePackage:
		return "package"
	case ModeMakeDepends:
		return "makedepends"
	case ModeUser:
		return "user"
	default:
		return "unknown"
	}
}

// SearchBy returns the value of the RPC "by" parameter for the mode.
func (m QueryMode) SearchBy() string {
	switch m {
	case ModeMakeDepends:
		return "makedepends"
	case ModeUser:
		return "maintainer"
	default:
		return "name"
	}
}

// ParseQueryMode parses a mode name as accepted on the command line and in config.
func ParseQueryMode(s string) (QueryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "package", "name":
		return ModePackage, nil
	case "makedepends", "make-depends":
		return ModeMakeDepends, nil
	case "user", "maintainer":
		return ModeUser, nil
	default:
		return ModePackage, errors.ErrInvalidQueryModeWithDetails(s)
	}
}

// Query is a search request. Two queries are the same search when both text and mode match.
type Query struct {
	Text string
	Mode QueryMode
}

// Equal reports whether q and other describe the same search.
func (q Query) Equal(other Query) bool {
	return q.Text == other.Text && q.Mode == other.Mode
}

// IsEmpty reports whether the query has no text.
func (q Query) IsEmpty() bool {
	return q.Text == ""
}

// PackageSummary is a single search result row.
type PackageSummary struct {
	ID             int64   `json:"ID" yaml:"id"`
	Name           string  `json:"Name" yaml:"name"`
	PackageBase    string  `json:"PackageBase,omitempty" yaml:"package_base,omitempty"`
	Version        string  `json:"Version" yaml:"version"`
	Description    string  `json:"Description,omitempty" yaml:"description,omitempty"`
	URL            string  `json:"URL,omitempty" yaml:"url,omitempty"`
	NumVotes       int     `json:"NumVotes" yaml:"num_votes"`
	Popularity     float64 `json:"Popularity" yaml:"popularity"`
	Maintainer     string  `json:"Maintainer,omitempty" yaml:"maintainer,omitempty"`
	OutOfDate      *int64  `json:"OutOfDate,omitempty" yaml:"out_of_date,omitempty"`
	FirstSubmitted int64   `json:"FirstSubmitted,omitempty" yaml:"first_submitted,omitempty"`
	LastModified   int64   `json:"LastModified,omitempty" yaml:"last_modified,omitempty"`
	URLPath        string  `json:"URLPath,omitempty" yaml:"url_path,omitempty"`
}

// Summary returns the summary itself.
func (p PackageSummary) Summary() PackageSummary {
	return p
}

// LastModifiedTime returns LastModified as a time, or the zero time when unset.
func (p PackageSummary) LastModifiedTime() time.Time {
	if p.LastModified == 0 {
		return time.Time{}
	}
	return time.Unix(p.LastModified, 0).UTC()
}

// IsOutOfDate reports whether the package has been flagged out of date.
func (p PackageSummary) IsOutOfDate() bool {
	return p.OutOfDate != nil
}

// PackageDetail is the extended record returned by an info request.
type PackageDetail struct {
	PackageSummary `yaml:",inline"`

	Submitter     string   `json:"Submitter,omitempty" yaml:"submitter,omitempty"`
	Depends       []string `json:"Depends,omitempty" yaml:"depends,omitempty"`
	MakeDepends   []string `json:"MakeDepends,omitempty" yaml:"make_depends,omitempty"`
	OptDepends    []string `json:"OptDepends,omitempty" yaml:"opt_depends,omitempty"`
	CheckDepends  []string `json:"CheckDepends,omitempty" yaml:"check_depends,omitempty"`
	Conflicts     []string `json:"Conflicts,omitempty" yaml:"conflicts,omitempty"`
	Provides      []string `json:"Provides,omitempty" yaml:"provides,omitempty"`
	Replaces      []string `json:"Replaces,omitempty" yaml:"replaces,omitempty"`
	Groups        []string `json:"Groups,omitempty" yaml:"groups,omitempty"`
	License       []string `json:"License,omitempty" yaml:"license,omitempty"`
	Keywords      []string `json:"Keywords,omitempty" yaml:"keywords,omitempty"`
	CoMaintainers []string `json:"CoMaintainers,omitempty" yaml:"co_maintainers,omitempty"`
}

// Response is the envelope of a search request.
// Results and Error are mutually exclusive.
type Response struct {
	ResultCount int              `json:"resultcount" yaml:"result_count"`
	Results     []PackageSummary `json:"results" yaml:"results"`
	Type        string           `json:"type" yaml:"type"`
	Version     int              `json:"version" yaml:"version"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
}

type infoResponse struct {
	ResultCount int             `json:"resultcount"`
	Results     []PackageDetail `json:"results"`
	Type        string          `json:"type"`
	Version     int             `json:"version"`
	Error       string          `json:"error,omitempty"`
}

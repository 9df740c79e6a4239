package cli

import "fmt"

var (
	// ErrEmptyQuery is returned when search is given a blank query.
	ErrEmptyQuery = fmt.Errorf("search query cannot be empty")
	// ErrSearchFailed is returned when a search resolves to a failure.
	ErrSearchFailed = fmt.Errorf("search failed")
	// ErrNotInResults is returned when --select names a package the search did not return.
	ErrNotInResults = fmt.Errorf("package not found in search results")
	// ErrConfigFileExists is returned by config init when the file is already present.
	ErrConfigFileExists = fmt.Errorf("configuration file already exists")
)

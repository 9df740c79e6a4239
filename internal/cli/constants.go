package cli

// Default values for CLI flags and output.
const (
	// DefaultHistoryLimit is the default number of history entries to show.
	DefaultHistoryLimit = 20
	// MaxSearchDescriptionLength is the maximum length of a package description in search results.
	MaxSearchDescriptionLength = 50
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// TimeLayout is used for timestamps in text output.
	TimeLayout = "2006-01-02 15:04"
)

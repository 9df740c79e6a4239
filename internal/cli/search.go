package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/aurseek/pkg/aur"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var (
		by         string
		selectName string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the AUR for packages",
		Long: `Search the Arch User Repository.

By default the query is matched against package names and descriptions.
Use --by to search the make dependencies of packages or the packages of a
maintainer instead. With --select the named result is recorded in the
history and its details are shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return ErrEmptyQuery
			}
			return runSearch(cmd.Context(), args[0], by, selectName)
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "search field: package, makedepends or user (default from config)")
	cmd.Flags().StringVar(&selectName, "select", "", "record the named result in the history and show its details")

	return cmd
}

func runSearch(ctx context.Context, text, by, selectName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := cfg.QueryMode()
	if by != "" {
		if mode, err = aur.ParseQueryMode(by); err != nil {
			return err
		}
	}

	sess, _, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	query := aur.Query{Text: text, Mode: mode}
	status, err := sess.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	switch status.Kind {
	case aur.StatusFailure:
		return fmt.Errorf("%w: %s", ErrSearchFailed, status.Message)
	case aur.StatusSuccess:
	default:
		return fmt.Errorf("%w: search ended in state %s", ErrSearchFailed, status)
	}

	out := newPrinter(cfg)
	results := status.Results()
	if selectName == "" {
		return out.searchResults(query, results)
	}

	for _, pkg := range results {
		if pkg.Name != selectName {
			continue
		}
		if _, err := sess.Select(ctx, pkg); err != nil {
			return err
		}
		detail, err := sess.Inspect(ctx, pkg.Name)
		if err != nil {
			return err
		}
		return out.detail(detail)
	}
	return fmt.Errorf("%w: %s is not among the results for '%s'", ErrNotInResults, selectName, text)
}

package cli

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/aurseek/internal/logger"
	"github.com/glorpus-work/aurseek/pkg/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var (
		limit  int
		follow bool
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously selected packages",
		Long: `Show the packages recorded by select and search --select, newest first.

With --follow the command keeps running and prints packages as they are
selected, including selections made by other aurseek processes.
With --check the selected versions are compared against the AUR and the
packages that have a newer version are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if follow && check {
				return fmt.Errorf("--follow and --check cannot be combined")
			}
			return runHistory(cmd.Context(), limit, follow, check)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "maximum number of entries to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep running and print new selections")
	cmd.Flags().BoolVar(&check, "check", false, "list packages with a newer version in the AUR")

	return cmd
}

func runHistory(ctx context.Context, limit int, follow, check bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, store, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	out := newPrinter(cfg)

	if check {
		// Every entry takes part so that each package is checked at its newest selection.
		entries, err := store.Recent(ctx, 0)
		if err != nil {
			return err
		}
		updates, err := sess.Outdated(ctx, entries)
		if err != nil {
			return err
		}
		return out.updates(updates)
	}

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if !follow {
		return out.historyEntries(entries)
	}

	return followHistory(ctx, store, entries, out)
}

// followHistory prints the given entries oldest first and then streams new
// ones until ctx is canceled.
func followHistory(ctx context.Context, store *history.SQLiteStore, recent []history.Entry, out *printer) error {
	var lastID int64
	for i := len(recent) - 1; i >= 0; i-- {
		if err := out.followedEntry(recent[i]); err != nil {
			return err
		}
	}
	if len(recent) > 0 {
		lastID = recent[0].ID
	}

	entries, err := store.Follow(ctx, lastID)
	if err != nil {
		return err
	}
	logger.Debug("following history", logger.Fields{"after_id": lastID})
	logger.Infof("Following history in %s, press Ctrl+C to stop", store.Path())

	for entry := range entries {
		if err := out.followedEntry(entry); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil && !goerrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

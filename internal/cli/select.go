package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/aurseek/internal/logger"
)

// NewSelectCmd creates the select command.
func NewSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <name>",
		Short: "Record a package in the history and show its details",
		Long: `Look up an AUR package by exact name, append it to the history and
show its details. Selecting the same package again adds another entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd.Context(), args[0])
		},
	}

	return cmd
}

func runSelect(ctx context.Context, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, _, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	detail, entry, err := sess.SelectName(ctx, name)
	if err != nil {
		return err
	}
	logger.Debug("recorded in history", logger.Fields{"package": name, "id": entry.ID})
	if detail.IsOutOfDate() {
		logger.Warnf("%s %s is flagged out of date in the AUR", detail.Name, detail.Version)
	}

	return newPrinter(cfg).detail(detail)
}

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Show details of a package",
		Long: `Fetch and show the details of an AUR package.

Unlike select, info does not record the package in the history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), args[0])
		},
	}

	return cmd
}

func runInfo(ctx context.Context, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, _, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	detail, err := sess.Inspect(ctx, name)
	if err != nil {
		return err
	}
	return newPrinter(cfg).detail(detail)
}

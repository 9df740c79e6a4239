//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/aurseek/pkg/config"
	"github.com/glorpus-work/aurseek/pkg/history"
)

// runCLI executes the root command with args and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	runErr := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String(), runErr
}

// historyEntries opens the history database configured at cfgPath and
// returns its entries.
func historyEntries(t *testing.T, cfgPath string) []history.Entry {
	t.Helper()

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	store, err := history.Open(cfg.GetHistoryPath())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	entries, err := store.All(context.Background())
	require.NoError(t, err)
	return entries
}

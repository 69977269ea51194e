package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/notesignal/article-tracker/internal/alert"
	"github.com/notesignal/article-tracker/internal/query"
)

// newWatchCmd creates the 'watch' subcommand: the alert poller.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Polls the store and reports newly ingested articles",
		Long: `Runs the alert watcher. It keeps the id of the last reported article in a
local state file and, on every poll, reports each stored article with a
greater id, oldest first.`,
		RunE: runWatchCommand,
	}
	cmd.Flags().Bool("once", false, "run a single check and exit instead of polling")
	return cmd
}

func runWatchCommand(cmd *cobra.Command, _ []string) error {
	state, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, state)
	if err != nil {
		return err
	}
	defer store.Close()

	watcher, err := alert.NewWatcher(query.New(store), state.cfg.Alert.StatePath, nil, state.logger)
	if err != nil {
		return err
	}

	if once, _ := cmd.Flags().GetBool("once"); once {
		_, err := watcher.Check(ctx)
		return err
	}

	if err := watcher.Run(ctx, state.cfg.AlertInterval()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

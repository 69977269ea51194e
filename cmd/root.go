// Package cmd defines and implements the CLI commands for the article-tracker executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notesignal/article-tracker/internal/article"
	"github.com/notesignal/article-tracker/internal/config"
	"github.com/notesignal/article-tracker/internal/logging"
	"github.com/notesignal/article-tracker/internal/metrics"
	"github.com/notesignal/article-tracker/internal/storage/memory"
	"github.com/notesignal/article-tracker/internal/storage/postgres"
)

var cfgFile string

// appState carries the services every subcommand needs. It is built once in
// the root PersistentPreRunE and injected through the command context.
type appState struct {
	cfg    config.Config
	logger *zap.Logger
}

type appKeyType struct{}

var appKey appKeyType

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article-tracker",
		Short: "Ingests web articles and serves their stored metadata.",
		Long: `article-tracker fetches articles from web sources, extracts minimal
metadata (title, publication date), and persists one record per source URL.
Stored records are served over a read-only HTTP API and watched for new
entries by the alert poller.`,

		SilenceUsage: true,

		// Runs after flags are parsed but before the subcommand's RunE;
		// builds the shared services and injects them into the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			metrics.Init()

			ctx := context.WithValue(cmd.Context(), appKey, &appState{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if state, ok := cmd.Context().Value(appKey).(*appState); ok && state != nil {
				_ = state.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); defaults and TRACKER_* env vars apply without one")

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (*appState, error) {
	state, ok := ctx.Value(appKey).(*appState)
	if !ok || state == nil {
		return nil, errors.New("application services not initialized")
	}
	return state, nil
}

// openStore builds the configured article store. Callers own the Close.
func openStore(ctx context.Context, state *appState) (article.Store, error) {
	switch state.cfg.Store.Backend {
	case config.StoreMemory:
		state.logger.Info("using in-memory article store; records will not survive restarts")
		return memory.NewArticleStore(), nil
	case config.StorePostgres:
		store, err := postgres.NewArticleStore(ctx, postgres.ArticleStoreConfig{
			DSN:             state.cfg.DB.DSN,
			Table:           state.cfg.DB.Table,
			MaxConns:        state.cfg.DB.MaxConns,
			MinConns:        state.cfg.DB.MinConns,
			MaxConnLifetime: state.cfg.DB.ConnLifetime(),
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", state.cfg.Store.Backend)
	}
}

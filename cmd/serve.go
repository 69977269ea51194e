package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notesignal/article-tracker/internal/api"
	"github.com/notesignal/article-tracker/internal/query"
)

// newServeCmd creates the 'serve' subcommand exposing the read API.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the stored articles over a read-only HTTP API",
		Long: `Starts the HTTP server: GET / lists all articles newest first, GET /{id}
returns one article, GET /dashboard renders an HTML table. The server never
mutates the store; ingestion stays with the 'ingest' command.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
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

	server := api.NewServer(query.New(store), state.logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", state.cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		state.logger.Info("http server listening", zap.Int("port", state.cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		state.logger.Info("http server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notesignal/article-tracker/internal/article"
	"github.com/notesignal/article-tracker/internal/clock/system"
	collyfetcher "github.com/notesignal/article-tracker/internal/fetch/colly"
	"github.com/notesignal/article-tracker/internal/pipeline"
	"github.com/notesignal/article-tracker/internal/sink"
)

// newIngestCmd creates the 'ingest' subcommand: one bounded fetch and one
// idempotent upsert per URL argument, no retries.
func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <url> [url...]",
		Short: "Fetches articles and upserts their metadata into the store",
		Long: `Fetches each URL once, extracts the title and publication date, and
inserts or updates the article record keyed by that URL. Re-ingesting a URL
updates the existing record in place; it never creates a duplicate.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngestCommand,
	}
}

func runIngestCommand(cmd *cobra.Command, args []string) error {
	state, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context(), state)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := buildPipeline(state, store)
	if err != nil {
		return err
	}

	var failures int
	for _, url := range args {
		res, err := p.Ingest(cmd.Context(), url)
		if err != nil {
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "FAILED %s: %v\n", url, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %q published %s (id %d)\n",
			res.Article.Title, res.Article.PublicationDate, res.Article.ID)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d ingestions failed", failures, len(args))
	}
	return nil
}

func buildPipeline(state *appState, store article.Store) (*pipeline.Pipeline, error) {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     state.cfg.Fetch.UserAgent,
		RespectRobots: state.cfg.Fetch.RespectRobots,
		Timeout:       state.cfg.FetchTimeout(),
	})

	var snapshots pipeline.SnapshotSink
	if state.cfg.Sink.Enabled {
		htmlSink, err := sink.New(state.cfg.Sink.Dir)
		if err != nil {
			return nil, fmt.Errorf("init html sink: %w", err)
		}
		snapshots = htmlSink
	}

	return pipeline.New(fetcher, store, system.New(), snapshots, state.logger), nil
}

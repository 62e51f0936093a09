// Package cmd defines and implements the CLI commands for the versecrawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/api"
	"github.com/jsalter/versecrawler/internal/crawler"
	"github.com/jsalter/versecrawler/internal/extract"
	collyfetcher "github.com/jsalter/versecrawler/internal/fetcher/colly"
	"github.com/jsalter/versecrawler/internal/logging"
	"github.com/jsalter/versecrawler/internal/manifest"
	"github.com/jsalter/versecrawler/internal/metrics"
	"github.com/jsalter/versecrawler/internal/progress"
	"github.com/jsalter/versecrawler/internal/writer"
)

// newCrawlCmd creates and configures the 'crawl' subcommand. It is the only
// command that performs network work: it expands the book manifest into verse
// tasks, skips anything already persisted, and crawls the rest.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Starts the verse crawler",
		Long: `Crawls every verse named by the manifest (or a single book with --book),
writing per-chapter JSON files under the output directory. Re-running the
command resumes where the previous run stopped.`,

		RunE: runCrawlCommand,
	}

	cmd.Flags().StringP("book", "b", "", "restrict the crawl to a single book slug (e.g. genesis, 1_peter)")
	cmd.Flags().IntP("workers", "w", 0, "number of concurrent fetch workers")
	cmd.Flags().StringP("output", "o", "", "output directory for chapter JSON files")
	cmd.Flags().String("manifest", "", "path to the book/chapter manifest JSON")
	cmd.Flags().String("listen", "", "address for the status HTTP server (empty disables it)")

	bind := func(key, flag string) {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			logging.L.Fatal("Failed to bind flag", zap.String("flag", flag), zap.Error(err))
		}
	}
	bind("crawler.book", "book")
	bind("crawler.workers", "workers")
	bind("crawler.output_dir", "output")
	bind("crawler.manifest_path", "manifest")
	bind("server.listen", "listen")

	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}

	structure, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	engine, err := buildEngine(cfg, structure, logging.L)
	if err != nil {
		return err
	}

	if cfg.Listen != "" {
		server := api.NewServer(engine, logging.L)
		go func() {
			if serr := server.Serve(ctx, cfg.Listen); serr != nil && !errors.Is(serr, context.Canceled) {
				logging.L.Warn("Status server stopped", zap.Error(serr))
			}
		}()
		logging.L.Info("Status server listening", zap.String("addr", cfg.Listen))
	}

	if err := engine.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logging.L.Warn("Crawl interrupted; progress is persisted and the next run will resume")
			return nil
		}
		return fmt.Errorf("run crawler: %w", err)
	}

	logging.L.Info("Crawl command finished.")
	return nil
}

func buildEngine(cfg crawler.Config, structure manifest.Structure, logger *zap.Logger) (*crawler.Engine, error) {
	chapterWriter, err := writer.New(cfg.OutputDir, logger)
	if err != nil {
		return nil, fmt.Errorf("init writer: %w", err)
	}

	fetcher, err := collyfetcher.New(collyfetcher.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	engine := crawler.NewEngine(
		cfg,
		structure,
		fetcher,
		extract.New(),
		chapterWriter,
		progress.NewConsoleReporter(os.Stdout),
		logger,
	)
	return engine, nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/logging"
	"github.com/jsalter/versecrawler/internal/manifest"
)

// newManifestCmd creates the 'manifest' subcommand, which builds the
// book/chapter manifest the crawl command consumes.
func newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Generates the book/chapter manifest",
		Long: `Downloads a verse-per-line Bible text, derives the number of verses in
every chapter of every book, and writes the result as JSON. The crawl
command reads this file to enumerate its tasks without guessing at
chapter boundaries.`,

		RunE: runManifestCommand,
	}

	cmd.Flags().String("source-url", manifest.DefaultSourceURL, "URL of the verse-per-line source text")
	cmd.Flags().String("out", "bible_structure.json", "path to write the manifest JSON")

	return cmd
}

func runManifestCommand(cmd *cobra.Command, _ []string) error {
	sourceURL, err := cmd.Flags().GetString("source-url")
	if err != nil {
		return fmt.Errorf("read source-url flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("read out flag: %w", err)
	}

	logging.L.Info("Downloading source text", zap.String("url", sourceURL))
	body, err := manifest.FetchSourceText(cmd.Context(), sourceURL, viper.GetString("crawler.user_agent"))
	if err != nil {
		return fmt.Errorf("fetch source text: %w", err)
	}
	defer body.Close()

	structure, err := manifest.BuildStructure(body)
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}

	if err := structure.Save(outPath); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	logging.L.Info("Manifest written",
		zap.String("path", outPath),
		zap.Int("books", len(structure)),
		zap.Int("total_verses", structure.TotalVerses()))
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/logging"
	"github.com/jsalter/versecrawler/pkg/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versecrawler",
		Short: "A resumable, concurrent crawler for Bible verse data.",
		Long: `versecrawler fetches per-verse pages from biblehub.com, extracts the
major English translations, the original-language lexicon entries, and the
cross references, and persists everything as per-chapter JSON files.

Interrupted runs are safe: on the next invocation any verse already present
in the output directory is skipped.`,
	}

	cobra.OnInitialize(func() {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		}
		config.InitConfig()
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newManifestCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	logging.InitLogger()

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}

// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file, environment variables, and command-line flags, providing a unified
// configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. Called once at startup via
// cobra.OnInitialize.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/versecrawler/")
	viper.AddConfigPath("$HOME/.versecrawler")

	const defaultUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	viper.SetDefault("crawler.user_agent", defaultUA)
	viper.SetDefault("crawler.workers", 10)
	viper.SetDefault("crawler.output_dir", "bible")
	viper.SetDefault("crawler.manifest_path", "bible_structure.json")
	viper.SetDefault("crawler.base_url", "https://biblehub.com")
	viper.SetDefault("crawler.request_timeout", "15s")
	viper.SetDefault("crawler.book", "")
	viper.SetDefault("server.listen", "")

	viper.SetEnvPrefix("VERSECRAWLER") // e.g. VERSECRAWLER_CRAWLER_WORKERS=20
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal; defaults and environment variables still apply.
			logging.L.Debug("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}

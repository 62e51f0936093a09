package crawler

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jsalter/versecrawler/internal/manifest"
)

// Config captures every knob that influences a crawl run. All values
// originate from Viper so the crawler can be configured via files, env vars,
// or CLI flags.
type Config struct {
	Book           string
	Workers        int
	OutputDir      string
	ManifestPath   string
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration
	Listen         string
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Book:           v.GetString("crawler.book"),
		Workers:        v.GetInt("crawler.workers"),
		OutputDir:      v.GetString("crawler.output_dir"),
		ManifestPath:   v.GetString("crawler.manifest_path"),
		BaseURL:        v.GetString("crawler.base_url"),
		UserAgent:      v.GetString("crawler.user_agent"),
		RequestTimeout: v.GetDuration("crawler.request_timeout"),
		Listen:         v.GetString("server.listen"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Book != "" && !manifest.IsValidBook(c.Book) {
		return fmt.Errorf("unknown book %q (valid books: %s, ...)",
			c.Book, strings.Join(manifest.Books[:5], ", "))
	}
	if c.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be > 0")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.ManifestPath == "" {
		return fmt.Errorf("crawler.manifest_path must be set")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	return nil
}

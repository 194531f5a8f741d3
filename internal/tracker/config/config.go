package config

import (
	"time"

	"nickel-price-tracker/pkg/config"
)

// Scraper holds scrape pipeline configuration.
type Scraper struct {
	SourceURL    string        `mapstructure:"source_url"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Schedule     string        `mapstructure:"schedule"`
	SnapshotPath string        `mapstructure:"snapshot_path"`
}

// Config holds the full configuration for the tracker service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	API      config.API      `mapstructure:"api"`
	Scraper  Scraper         `mapstructure:"scraper"`
}

// Load loads the tracker configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

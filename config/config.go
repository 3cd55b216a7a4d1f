package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the scraper configuration
type Config struct {
	Site struct {
		Origin         string `yaml:"origin"`
		ItemMarker     string `yaml:"item_marker"`
		ClassSubstring string `yaml:"class_substring"`
	} `yaml:"site"`

	Extraction struct {
		Driver         string `yaml:"driver"`   // rod, chromedp or static
		Strategy       string `yaml:"strategy"` // markup or query
		FirstScroll    int    `yaml:"first_scroll"`
		SecondScroll   int    `yaml:"second_scroll"`
		WaitTimeoutMS  int    `yaml:"wait_timeout_ms"`
		SettleDelayMS  int    `yaml:"settle_delay_ms"`
		PassIntervalMS int    `yaml:"pass_interval_ms"`
		MaxPasses      int    `yaml:"max_passes"`
		IdlePasses     int    `yaml:"idle_passes"`
	} `yaml:"extraction"`

	Telegram struct {
		ChatID int64 `yaml:"chat_id"`
	} `yaml:"telegram"`

	Sheets struct {
		SpreadsheetURL string `yaml:"spreadsheet_url"`
		SheetName      string `yaml:"sheet_name"`
	} `yaml:"sheets"`

	Database struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"database"`
}

// LoadConfig loads configuration from a YAML file.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Site.Origin = "https://www.avito.ru"
	cfg.Site.ItemMarker = `[data-marker="item"]`
	cfg.Site.ClassSubstring = "styles-item"
	cfg.Extraction.Driver = "rod"
	cfg.Extraction.Strategy = "markup"
	cfg.Extraction.FirstScroll = 400
	cfg.Extraction.SecondScroll = 800
	cfg.Extraction.WaitTimeoutMS = 5000
	cfg.Extraction.SettleDelayMS = 1000
	cfg.Extraction.PassIntervalMS = 2000
	cfg.Extraction.MaxPasses = 10
	cfg.Extraction.IdlePasses = 3
	cfg.Sheets.SheetName = "Sheet1"
	return cfg
}

// Validate checks that the configuration can drive an extraction
func (c *Config) Validate() error {
	if c.Site.Origin == "" {
		return fmt.Errorf("site.origin must not be empty")
	}
	if c.Site.ItemMarker == "" {
		return fmt.Errorf("site.item_marker must not be empty")
	}
	switch c.Extraction.Driver {
	case "rod", "chromedp", "static":
	default:
		return fmt.Errorf("unknown extraction.driver %q", c.Extraction.Driver)
	}
	switch c.Extraction.Strategy {
	case "markup":
		if c.Site.ClassSubstring == "" {
			return fmt.Errorf("site.class_substring is required by the markup strategy")
		}
	case "query":
	default:
		return fmt.Errorf("unknown extraction.strategy %q", c.Extraction.Strategy)
	}
	if c.Extraction.WaitTimeoutMS <= 0 {
		return fmt.Errorf("extraction.wait_timeout_ms must be positive")
	}
	if c.Extraction.SettleDelayMS < 0 || c.Extraction.PassIntervalMS < 0 {
		return fmt.Errorf("extraction delays must not be negative")
	}
	if c.Extraction.MaxPasses < 0 || c.Extraction.IdlePasses < 0 {
		return fmt.Errorf("extraction pass limits must not be negative")
	}
	return nil
}

// WaitTimeout returns the item marker wait timeout
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Extraction.WaitTimeoutMS) * time.Millisecond
}

// SettleDelay returns the pause after the marker wait
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Extraction.SettleDelayMS) * time.Millisecond
}

// PassInterval returns the pause between extraction passes
func (c *Config) PassInterval() time.Duration {
	return time.Duration(c.Extraction.PassIntervalMS) * time.Millisecond
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "https://www.avito.ru", cfg.Site.Origin)
	assert.Equal(t, `[data-marker="item"]`, cfg.Site.ItemMarker)
	assert.Equal(t, "styles-item", cfg.Site.ClassSubstring)
	assert.Equal(t, 400, cfg.Extraction.FirstScroll)
	assert.Equal(t, 800, cfg.Extraction.SecondScroll)
	assert.Equal(t, 5*time.Second, cfg.WaitTimeout())
	assert.Equal(t, time.Second, cfg.SettleDelay())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  class_substring: "iva-item"
extraction:
  strategy: query
  driver: static
  wait_timeout_ms: 2500
telegram:
  chat_id: 42
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "iva-item", cfg.Site.ClassSubstring)
	assert.Equal(t, "query", cfg.Extraction.Strategy)
	assert.Equal(t, "static", cfg.Extraction.Driver)
	assert.Equal(t, 2500*time.Millisecond, cfg.WaitTimeout())
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	// untouched fields keep defaults
	assert.Equal(t, "https://www.avito.ru", cfg.Site.Origin)
	assert.Equal(t, 800, cfg.Extraction.SecondScroll)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "site: [unterminated"},
		{"unknown driver", "extraction:\n  driver: selenium\n"},
		{"unknown strategy", "extraction:\n  strategy: regex\n"},
		{"zero timeout", "extraction:\n  wait_timeout_ms: 0\n"},
		{"empty origin", "site:\n  origin: \"\"\n"},
		{"markup without substring", "site:\n  class_substring: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

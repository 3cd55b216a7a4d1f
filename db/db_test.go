package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnStringFromEnv(t *testing.T) {
	t.Run("database url wins", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/avito?sslmode=disable")
		t.Setenv("DB_HOST", "ignored")
		assert.Equal(t, "postgres://u:p@db:5432/avito?sslmode=disable", ConnStringFromEnv())
	})

	t.Run("components with defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("DB_HOST", "pg")
		t.Setenv("DB_PORT", "")
		t.Setenv("DB_USER", "")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("DB_NAME", "")
		t.Setenv("DB_SSLMODE", "require")
		assert.Equal(t,
			"host=pg port=5432 user=avito_scraper password=secret dbname=avito_scraper sslmode=require",
			ConnStringFromEnv())
	})
}

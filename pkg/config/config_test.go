package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, SourceFile, cfg.Source.Kind)
	assert.Positive(t, cfg.Build.Workers)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadYAML(t *testing.T) {
	path := writeSettings(t, `
logging:
  level: debug
  format: json
build:
  workers: 3
source:
  kind: postgres
  query: SELECT id, title FROM articles
redis:
  enabled: true
  key: search:index
  ttl: 10m
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Build.Workers)
	assert.Equal(t, SourcePostgres, cfg.Source.Kind)
	assert.Equal(t, "SELECT id, title FROM articles", cfg.Source.Query)
	assert.Equal(t, "search:index", cfg.Redis.Key)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IB_BUILD_WORKERS", "7")
	t.Setenv("IB_LOGGING_LEVEL", "warn")
	t.Setenv("IB_KAFKA_ENABLED", "true")
	t.Setenv("IB_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("IB_POSTGRES_PORT", "not-a-port")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Build.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5432, cfg.Postgres.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"negative workers", func(c *Config) { c.Build.Workers = -1 }, "build.workers"},
		{"unknown source", func(c *Config) { c.Source.Kind = "s3" }, "source.kind"},
		{"postgres without query", func(c *Config) { c.Source.Kind = SourcePostgres; c.Source.Query = " " }, "source.query"},
		{"metrics bad port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 0 }, "metrics.port"},
		{"redis without key", func(c *Config) { c.Redis.Enabled = true; c.Redis.Key = "" }, "redis.key"},
		{"kafka without topic", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "" }, "kafka"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *apperrors.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.key, cfgErr.Key)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeSettings(t, "build: [unterminated"))
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"host=localhost port=5432 user=indexbuilder password=localdev dbname=documents sslmode=disable",
		Default().Postgres.DSN())
}

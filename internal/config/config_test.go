package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Market.APIKey)
	assert.Equal(t, 50000, cfg.Pipeline.DefaultCategoryCode)
	assert.Equal(t, 50, cfg.Pipeline.MaxPages)
	assert.Equal(t, string(PolicySplit), cfg.Pipeline.Policy)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[market]
api_key = "file-key"

[pipeline]
default_category_code = 90000
max_pages = 10
policy = "single"
schedule_interval = "5m"

[server]
port = 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// Env beats file.
	t.Setenv("MAX_PAGE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Market.APIKey)
	assert.Equal(t, 90000, cfg.Pipeline.DefaultCategoryCode)
	assert.Equal(t, 25, cfg.Pipeline.MaxPages)
	assert.Equal(t, string(PolicySingle), cfg.Pipeline.Policy)
	assert.Equal(t, 9090, cfg.Server.Port)

	interval, err := cfg.ScheduleInterval()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, interval)
}

func TestLoad_MissingCredentialIsFatal(t *testing.T) {
	t.Setenv("API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))

	assert.Nil(t, cfg)
	var configErr *domain.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "market.api_key", configErr.Field)
}

func TestValidate_RejectsUnknownPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Market.APIKey = "test-key"
	cfg.Pipeline.Policy = "sharded"

	var configErr *domain.ConfigError
	require.ErrorAs(t, cfg.Validate(), &configErr)
	assert.Equal(t, "pipeline.policy", configErr.Field)
}

func TestValidate_RejectsBadScheduleInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Market.APIKey = "test-key"
	cfg.Pipeline.ScheduleInterval = "every five minutes"

	var configErr *domain.ConfigError
	require.ErrorAs(t, cfg.Validate(), &configErr)
	assert.Equal(t, "pipeline.schedule_interval", configErr.Field)
}

func TestDSN(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=loaflow sslmode=disable",
		cfg.DSN())

	cfg.Database.ConnStr = "postgres://user:pass@db:5432/loaflow"
	assert.Equal(t, "postgres://user:pass@db:5432/loaflow", cfg.DSN())
}

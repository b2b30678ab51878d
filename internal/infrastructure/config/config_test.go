package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs Load from an empty directory so no stray config.toml is picked up
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "posconsole", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "vi", cfg.App.Locale)
		assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
		assert.Equal(t, "/api", cfg.API.Prefix)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, 0, cfg.API.MaxRetries)
		assert.Equal(t, 0.0, cfg.API.RateLimitQPS)
		assert.Equal(t, 20, cfg.View.PageSize)
		assert.Equal(t, 300*time.Millisecond, cfg.View.Debounce)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, "token", filepath.Base(cfg.Auth.TokenFile))
		assert.Equal(t, "8080", cfg.DevServer.Port)
		assert.Equal(t, 50, cfg.DevServer.SeedCount)
		assert.Equal(t, "http://localhost:8080/api", cfg.API.APIRoot())
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		isolate(t)
		t.Setenv("POS_API_BASE_URL", "https://pos.example.vn/")
		t.Setenv("POS_API_TIMEOUT", "10s")
		t.Setenv("POS_API_RATE_LIMIT_QPS", "2.5")
		t.Setenv("POS_APP_LOCALE", "en")
		t.Setenv("POS_VIEW_PAGE_SIZE", "50")
		t.Setenv("POS_VIEW_DEBOUNCE", "0s")
		t.Setenv("POS_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://pos.example.vn/", cfg.API.BaseURL)
		assert.Equal(t, "https://pos.example.vn/api", cfg.API.APIRoot())
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, 2.5, cfg.API.RateLimitQPS)
		assert.Equal(t, "en", cfg.App.Locale)
		assert.Equal(t, 50, cfg.View.PageSize)
		assert.Equal(t, time.Duration(0), cfg.View.Debounce)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("loads values from an explicit toml file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "pos.toml")
		content := `
[app]
locale = "en"

[api]
base_url = "http://10.0.0.5:9000"
prefix = "/api/v2"
max_retries = 2

[view]
page_size = 10
debounce = "150ms"

[devserver]
seed_count = 5
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadFrom(path)
		require.NoError(t, err)

		assert.Equal(t, "http://10.0.0.5:9000/api/v2", cfg.API.APIRoot())
		assert.Equal(t, 2, cfg.API.MaxRetries)
		assert.Equal(t, 10, cfg.View.PageSize)
		assert.Equal(t, 150*time.Millisecond, cfg.View.Debounce)
		assert.Equal(t, 5, cfg.DevServer.SeedCount)
	})

	t.Run("fails when explicit file is missing", func(t *testing.T) {
		isolate(t)
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"relative base url", func(c *Config) { c.API.BaseURL = "localhost:8080" }, "api.base_url"},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"prefix without slash", func(c *Config) { c.API.Prefix = "api" }, "api.prefix"},
		{"negative qps", func(c *Config) { c.API.RateLimitQPS = -1 }, "api.rate_limit_qps"},
		{"too many retries", func(c *Config) { c.API.MaxRetries = 9 }, "api.max_retries"},
		{"page size zero", func(c *Config) { c.View.PageSize = 0 }, "view.page_size"},
		{"page size too large", func(c *Config) { c.View.PageSize = 500 }, "view.page_size"},
		{"negative debounce", func(c *Config) { c.View.Debounce = -time.Second }, "view.debounce"},
		{"unknown locale", func(c *Config) { c.App.Locale = "fr" }, "app.locale"},
		{"production over http", func(c *Config) { c.App.Env = "production" }, "https"},
		{"short jwt secret", func(c *Config) { c.DevServer.JWTSecret = "short" }, "jwt_secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg, false)
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Auth      AuthConfig
	View      ViewConfig
	Log       LogConfig
	Metrics   MetricsConfig
	DevServer DevServerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name   string
	Env    string
	Locale string // vi or en
}

// APIConfig holds REST backend settings
type APIConfig struct {
	BaseURL        string
	Prefix         string
	Timeout        time.Duration
	RateLimitQPS   float64 // 0 disables client-side rate limiting
	RateLimitBurst int
	MaxRetries     int // failed requests are not retried by default
	RetryDelay     time.Duration
}

// AuthConfig holds token storage settings
type AuthConfig struct {
	TokenFile  string
	CookieFile string
}

// ViewConfig holds collection view settings
type ViewConfig struct {
	PageSize int
	Debounce time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// MetricsConfig holds Prometheus exporter settings
type MetricsConfig struct {
	Addr string // empty disables the exporter
}

// DevServerConfig holds settings of the stub backend
type DevServerConfig struct {
	Port      string
	SeedFile  string
	SeedCount int
	JWTSecret string
	TokenTTL  time.Duration
	Username  string
	Password  string
}

// Load loads configuration from config.toml in the usual locations.
// Priority (highest to lowest):
// 1. Environment variables with POS_ prefix (e.g., POS_API_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit TOML file.
// An empty path searches the working directory and the user config directory.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "posconsole"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:   v.GetString("app.name"),
			Env:    v.GetString("app.env"),
			Locale: v.GetString("app.locale"),
		},
		API: APIConfig{
			BaseURL:        v.GetString("api.base_url"),
			Prefix:         v.GetString("api.prefix"),
			Timeout:        v.GetDuration("api.timeout"),
			RateLimitQPS:   v.GetFloat64("api.rate_limit_qps"),
			RateLimitBurst: v.GetInt("api.rate_limit_burst"),
			MaxRetries:     v.GetInt("api.max_retries"),
			RetryDelay:     v.GetDuration("api.retry_delay"),
		},
		Auth: AuthConfig{
			TokenFile:  v.GetString("auth.token_file"),
			CookieFile: v.GetString("auth.cookie_file"),
		},
		View: ViewConfig{
			PageSize: v.GetInt("view.page_size"),
			Debounce: v.GetDuration("view.debounce"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
		DevServer: DevServerConfig{
			Port:      v.GetString("devserver.port"),
			SeedFile:  v.GetString("devserver.seed_file"),
			SeedCount: v.GetInt("devserver.seed_count"),
			JWTSecret: v.GetString("devserver.jwt_secret"),
			TokenTTL:  v.GetDuration("devserver.token_ttl"),
			Username:  v.GetString("devserver.username"),
			Password:  v.GetString("devserver.password"),
		},
	}
	// view.debounce = 0 is meaningful (fetch immediately), so only default it when unset
	debounceSet := v.IsSet("view.debounce")

	applyDefaults(cfg, debounceSet)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config, debounceSet bool) {
	if cfg.App.Name == "" {
		cfg.App.Name = "posconsole"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Locale == "" {
		cfg.App.Locale = "vi"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.Prefix == "" {
		cfg.API.Prefix = "/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.RateLimitBurst == 0 {
		cfg.API.RateLimitBurst = 5
	}
	if cfg.API.RetryDelay == 0 {
		cfg.API.RetryDelay = time.Second
	}
	if cfg.Auth.TokenFile == "" {
		cfg.Auth.TokenFile = filepath.Join(stateDir(), "token")
	}
	if cfg.Auth.CookieFile == "" {
		cfg.Auth.CookieFile = filepath.Join(stateDir(), "cookies.json")
	}
	if cfg.View.PageSize == 0 {
		cfg.View.PageSize = 20
	}
	if !debounceSet {
		cfg.View.Debounce = 300 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.DevServer.Port == "" {
		cfg.DevServer.Port = "8080"
	}
	if cfg.DevServer.SeedCount == 0 {
		cfg.DevServer.SeedCount = 50
	}
	if cfg.DevServer.JWTSecret == "" {
		cfg.DevServer.JWTSecret = "posconsole-devserver-secret-change-me"
	}
	if cfg.DevServer.TokenTTL == 0 {
		cfg.DevServer.TokenTTL = 8 * time.Hour
	}
	if cfg.DevServer.Username == "" {
		cfg.DevServer.Username = "admin"
	}
	if cfg.DevServer.Password == "" {
		cfg.DevServer.Password = "admin123"
	}
}

func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "posconsole")
	}
	return ".posconsole"
}

// validate checks the configuration for invalid values
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if !strings.HasPrefix(c.API.Prefix, "/") {
		return fmt.Errorf("api.prefix must start with '/', got %q", c.API.Prefix)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	if c.API.RateLimitQPS < 0 {
		return fmt.Errorf("api.rate_limit_qps cannot be negative")
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 5 {
		return fmt.Errorf("api.max_retries must be between 0 and 5, got %d", c.API.MaxRetries)
	}
	if c.View.PageSize < 1 || c.View.PageSize > 200 {
		return fmt.Errorf("view.page_size must be between 1 and 200, got %d", c.View.PageSize)
	}
	if c.View.Debounce < 0 {
		return fmt.Errorf("view.debounce cannot be negative")
	}
	if c.App.Locale != "vi" && c.App.Locale != "en" {
		return fmt.Errorf("app.locale must be 'vi' or 'en', got %q", c.App.Locale)
	}
	if c.IsProduction() && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use https in production")
	}
	if len(c.DevServer.JWTSecret) < 16 {
		return fmt.Errorf("devserver.jwt_secret must be at least 16 characters")
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// APIRoot returns the base URL joined with the API prefix
func (a *APIConfig) APIRoot() string {
	return strings.TrimRight(a.BaseURL, "/") + "/" + strings.Trim(a.Prefix, "/")
}

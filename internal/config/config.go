package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BUYCART_APP_PORT.
const EnvPrefix = "BUYCART"

type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Catalog   CatalogConfig
	Breaker   BreakerConfig
	Cache     CacheConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// CatalogConfig describes the upstream product sheet.
type CatalogConfig struct {
	URL         string
	Timeout     time.Duration
	LoadTimeout time.Duration
	RateLimit   float64 // requests per second, 0 disables throttling
	RateBurst   int
}

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// CacheConfig controls the optional Redis cache of sheet responses.
type CacheConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type SessionConfig struct {
	CookieName      string
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	SecureCookie    bool
}

// TelemetryConfig controls OpenTelemetry tracing. Disabled by default.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
}

// Load reads configuration in order of precedence:
// 1. Environment variables (BUYCART_ prefix)
// 2. config.toml in the working directory or /etc/storefront
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/storefront")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			RequestTimeout:  v.GetDuration("http.request_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Catalog: CatalogConfig{
			URL:         v.GetString("catalog.url"),
			Timeout:     v.GetDuration("catalog.timeout"),
			LoadTimeout: v.GetDuration("catalog.load_timeout"),
			RateLimit:   v.GetFloat64("catalog.rate_limit"),
			RateBurst:   v.GetInt("catalog.rate_burst"),
		},
		Breaker: BreakerConfig{
			MaxRequests:      v.GetUint32("breaker.max_requests"),
			Interval:         v.GetDuration("breaker.interval"),
			Timeout:          v.GetDuration("breaker.timeout"),
			FailureThreshold: v.GetUint32("breaker.failure_threshold"),
		},
		Cache: CacheConfig{
			Enabled:  v.GetBool("cache.enabled"),
			Addr:     v.GetString("cache.addr"),
			Password: v.GetString("cache.password"),
			DB:       v.GetInt("cache.db"),
			TTL:      v.GetDuration("cache.ttl"),
		},
		Session: SessionConfig{
			CookieName:      v.GetString("session.cookie_name"),
			IdleTTL:         v.GetDuration("session.idle_ttl"),
			CleanupInterval: v.GetDuration("session.cleanup_interval"),
			SecureCookie:    v.GetBool("session.secure_cookie"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storefront")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("catalog.url", catalog.DefaultSheetURL)
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.load_timeout", 15*time.Second)
	v.SetDefault("catalog.rate_limit", 2.0)
	v.SetDefault("catalog.rate_burst", 5)

	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", time.Minute)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.failure_threshold", 5)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("session.cookie_name", "buycart_session")
	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", time.Minute)
	v.SetDefault("session.secure_cookie", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.collector_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.insecure", true)
}

// Validate checks values that would make the server misbehave at runtime.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("config: app.port is required")
	}
	u, err := url.Parse(c.Catalog.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: catalog.url %q is not an http(s) URL", c.Catalog.URL)
	}
	if c.Catalog.RateLimit < 0 {
		return errors.New("config: catalog.rate_limit must not be negative")
	}
	if c.Session.CookieName == "" {
		return errors.New("config: session.cookie_name is required")
	}
	if c.Session.IdleTTL <= 0 {
		return errors.New("config: session.idle_ttl must be positive")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return errors.New("config: telemetry.sampling_ratio must be within [0, 1]")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return errors.New("config: cache.addr is required when the cache is enabled")
	}
	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

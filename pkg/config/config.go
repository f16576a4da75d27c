package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
	Cache   CacheConfig
	Server  ServerConfig
	Payment PaymentConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the remote storefront REST API.
type APIConfig struct {
	BaseURL   string        `envconfig:"STOREFRONT_API_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"STOREFRONT_API_USER_AGENT" default:"storefront-client/1"`
}

func (a *APIConfig) validate() error {
	raw := strings.TrimSpace(a.BaseURL)
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvAPIBaseURL, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", EnvAPIBaseURL)
	}
	a.BaseURL = strings.TrimRight(raw, "/")
	return nil
}

// StorageConfig locates the persistent local storage shared by client instances.
type StorageConfig struct {
	Path          string        `envconfig:"STOREFRONT_STORAGE_PATH" default:"storefront.db"`
	WatchInterval time.Duration `envconfig:"STOREFRONT_STORAGE_WATCH_INTERVAL" default:"2s"`
}

type CacheConfig struct {
	RedisURL     string        `envconfig:"STOREFRONT_REDIS_URL"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"5"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
	WidgetTTL    time.Duration `envconfig:"STOREFRONT_WIDGET_CACHE_TTL" default:"1h"`
}

// UseRedis reports whether widget caches should live in Redis instead of memory.
func (c CacheConfig) UseRedis() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

type ServerConfig struct {
	Port            string        `envconfig:"STOREFRONT_PORT" default:"3000"`
	AllowedOrigins  []string      `envconfig:"STOREFRONT_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_SHUTDOWN_TIMEOUT" default:"10s"`
}

type PaymentConfig struct {
	ProviderKey  string `envconfig:"STOREFRONT_PAYMENT_KEY"`
	Currency     string `envconfig:"STOREFRONT_PAYMENT_CURRENCY" default:"INR"`
	MerchantName string `envconfig:"STOREFRONT_PAYMENT_MERCHANT_NAME" default:"Storefront"`
}

// NormalizedCurrency returns the upper-cased ISO currency code.
func (p PaymentConfig) NormalizedCurrency() string {
	cur := strings.ToUpper(strings.TrimSpace(p.Currency))
	if cur == "" {
		return "INR"
	}
	return cur
}

type MetricsConfig struct {
	Enabled bool `envconfig:"STOREFRONT_METRICS_ENABLED" default:"true"`
}

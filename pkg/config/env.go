package config

// EnvPrefix is handed to envconfig; every field also carries its full name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvLogLevel        = "STOREFRONT_LOG_LEVEL"
	EnvAPIBaseURL      = "STOREFRONT_API_BASE_URL"
	EnvAPITimeout      = "STOREFRONT_API_TIMEOUT"
	EnvStoragePath     = "STOREFRONT_STORAGE_PATH"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvWidgetCacheTTL  = "STOREFRONT_WIDGET_CACHE_TTL"
	EnvPort            = "STOREFRONT_PORT"
	EnvAllowedOrigins  = "STOREFRONT_ALLOWED_ORIGINS"
	EnvPaymentKey      = "STOREFRONT_PAYMENT_KEY"
	EnvPaymentCurrency = "STOREFRONT_PAYMENT_CURRENCY"
)

package config

const (
	EnvPrefix = "PRICING"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "PRICING_APP_ENV"
	EnvPort        = "PRICING_APP_PORT"
	EnvLogLevel    = "PRICING_LOG_LEVEL"
	EnvDBDSN       = "PRICING_DB_DSN"
	EnvDBHost      = "PRICING_DB_HOST"
	EnvDBUser      = "PRICING_DB_USER"
	EnvDBName      = "PRICING_DB_NAME"
	EnvDBPassword  = "PRICING_DB_PASSWORD"
	EnvUseSQLite   = "PRICING_USE_SQLITE"
	EnvSQLitePath  = "PRICING_SQLITE_PATH"
	EnvRedisURL    = "PRICING_REDIS_URL"
	EnvBulkTimeout = "PRICING_BULK_TIMEOUT"
	EnvCORS        = "PRICING_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "GROWTH_APP_ENV"
	EnvPort   = "GROWTH_APP_PORT"

	EnvDBDSN  = "GROWTH_DB_DSN"
	EnvDBHost = "GROWTH_DB_HOST"
	EnvDBUser = "GROWTH_DB_USER"
	EnvDBName = "GROWTH_DB_NAME"

	EnvRedisURL = "GROWTH_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

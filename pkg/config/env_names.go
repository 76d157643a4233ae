package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "SAIGONMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "SAIGONMART_APP_ENV"
	EnvPort       = "SAIGONMART_APP_PORT"
	EnvDBDSN      = "SAIGONMART_DB_DSN"
	EnvDBHost     = "SAIGONMART_DB_HOST"
	EnvDBUser     = "SAIGONMART_DB_USER"
	EnvDBName     = "SAIGONMART_DB_NAME"
	EnvRedisURL   = "SAIGONMART_REDIS_URL"
	EnvJWTSecret  = "SAIGONMART_JWT_SECRET"
	EnvJWTIssuer  = "SAIGONMART_JWT_ISSUER"
	EnvJWTExpMins = "SAIGONMART_JWT_EXPIRATION_MINUTES"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

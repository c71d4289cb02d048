package config

// EnvPrefix is empty because every field carries its full ROADTRACK_* name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	KVDriverRedis    = "redis"
	KVDriverPostgres = "postgres"
	KVDriverSQLite   = "sqlite"
	KVDriverMemory   = "memory"
)

const (
	EnvAppEnv     = "ROADTRACK_APP_ENV"
	EnvPort       = "ROADTRACK_APP_PORT"
	EnvAPIPrefix  = "ROADTRACK_API_PREFIX"
	EnvKVDriver   = "ROADTRACK_KV_DRIVER"
	EnvDBDSN      = "ROADTRACK_DB_DSN"
	EnvDBDriver   = "ROADTRACK_DB_DRIVER"
	EnvDBHost     = "ROADTRACK_DB_HOST"
	EnvDBUser     = "ROADTRACK_DB_USER"
	EnvDBName     = "ROADTRACK_DB_NAME"
	EnvRedisURL   = "ROADTRACK_REDIS_URL"
	EnvJWTSecret  = "ROADTRACK_JWT_SECRET"
	EnvJWTIssuer  = "ROADTRACK_JWT_ISSUER"
	EnvJWTExpMins = "ROADTRACK_JWT_EXPIRATION_MINUTES"

	EnvRefreshTokenTTLMinutes = "ROADTRACK_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCSBucket        = "ROADTRACK_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry  = "ROADTRACK_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSFileURLExpiry = "ROADTRACK_GCS_FILE_URL_EXPIRY"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	KV            KVConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Upload        UploadConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.KV.validate(); err != nil {
		return nil, err
	}
	if cfg.KV.UsesSQL() {
		cfg.DB.Driver = cfg.KV.Driver
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"ROADTRACK_APP_ENV" required:"true"`
	Port            string        `envconfig:"ROADTRACK_APP_PORT" required:"true"`
	LogLevel        string        `envconfig:"ROADTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"ROADTRACK_LOG_WARN_STACK" default:"false"`
	APIPrefix       string        `envconfig:"ROADTRACK_API_PREFIX" default:"/api/v1"`
	ShutdownTimeout time.Duration `envconfig:"ROADTRACK_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// Prefix returns the API mount point normalized to "/segment" form ("" mounts at root).
func (a AppConfig) Prefix() string {
	p := strings.TrimSpace(a.APIPrefix)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// KVConfig selects the backend holding projects, reports and users.
type KVConfig struct {
	Driver    string `envconfig:"ROADTRACK_KV_DRIVER" default:"redis"`
	Namespace string `envconfig:"ROADTRACK_KV_NAMESPACE" default:"rt"`
}

// UsesSQL reports whether the KV store lives in a relational table.
func (k KVConfig) UsesSQL() bool {
	return k.Driver == KVDriverPostgres || k.Driver == KVDriverSQLite
}

func (k KVConfig) validate() error {
	switch k.Driver {
	case KVDriverRedis, KVDriverPostgres, KVDriverSQLite, KVDriverMemory:
		return nil
	}
	return fmt.Errorf("%s must be one of redis, postgres, sqlite, memory (got %q)", EnvKVDriver, k.Driver)
}

type DBConfig struct {
	DSN    string `envconfig:"ROADTRACK_DB_DSN"`
	Driver string `envconfig:"ROADTRACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ROADTRACK_DB_HOST"`
	Port     int    `envconfig:"ROADTRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"ROADTRACK_DB_USER"`
	Password string `envconfig:"ROADTRACK_DB_PASSWORD"`
	Name     string `envconfig:"ROADTRACK_DB_NAME"`
	SSLMode  string `envconfig:"ROADTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ROADTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROADTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROADTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROADTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROADTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ROADTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"ROADTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROADTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROADTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROADTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROADTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROADTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROADTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ROADTRACK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ROADTRACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ROADTRACK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ROADTRACK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ROADTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ROADTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ROADTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ROADTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ROADTRACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"ROADTRACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"ROADTRACK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"ROADTRACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"ROADTRACK_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"ROADTRACK_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"ROADTRACK_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ROADTRACK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ROADTRACK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ROADTRACK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ROADTRACK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"ROADTRACK_GCS_BUCKET_NAME" required:"true"`
	// UploadURLExpiry is the lifetime of the URL returned right after an upload.
	UploadURLExpiry time.Duration `envconfig:"ROADTRACK_GCS_UPLOAD_URL_EXPIRY" default:"8760h"`
	FileURLExpiry   time.Duration `envconfig:"ROADTRACK_GCS_FILE_URL_EXPIRY" default:"1h"`
}

type UploadConfig struct {
	MaxMemoryMB   int    `envconfig:"ROADTRACK_UPLOAD_MAX_MEMORY_MB" default:"32"`
	DefaultFolder string `envconfig:"ROADTRACK_UPLOAD_DEFAULT_FOLDER" default:"general"`
}

// MaxMemoryBytes is the multipart parsing budget kept in memory before spilling to disk.
func (u UploadConfig) MaxMemoryBytes() int64 {
	if u.MaxMemoryMB <= 0 {
		return 32 << 20
	}
	return int64(u.MaxMemoryMB) << 20
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == KVDriverSQLite {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

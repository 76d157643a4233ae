package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	DB             DBConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Password       PasswordConfig
	OTP            OTPConfig
	AuthRateLimit  AuthRateLimitConfig
	AdminBootstrap AdminBootstrapConfig
	FeatureFlags   FeatureFlagsConfig
	CORS           CORSConfig
	Assistant      AssistantConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SAIGONMART_APP_ENV" required:"true"`
	Port         string `envconfig:"SAIGONMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SAIGONMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SAIGONMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SAIGONMART_DB_DSN"`
	Driver string `envconfig:"SAIGONMART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SAIGONMART_DB_HOST"`
	Port     int    `envconfig:"SAIGONMART_DB_PORT" default:"5432"`
	User     string `envconfig:"SAIGONMART_DB_USER"`
	Password string `envconfig:"SAIGONMART_DB_PASSWORD"`
	Name     string `envconfig:"SAIGONMART_DB_NAME"`
	SSLMode  string `envconfig:"SAIGONMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SAIGONMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SAIGONMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SAIGONMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SAIGONMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SAIGONMART_REDIS_URL" required:"true"`
	Password     string        `envconfig:"SAIGONMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SAIGONMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SAIGONMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SAIGONMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SAIGONMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SAIGONMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SAIGONMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SAIGONMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SAIGONMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SAIGONMART_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SAIGONMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SAIGONMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SAIGONMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SAIGONMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SAIGONMART_ARGON_KEY_LEN" default:"32"`
}

type OTPConfig struct {
	CodeLength    int           `envconfig:"SAIGONMART_OTP_CODE_LENGTH" default:"6"`
	TTL           time.Duration `envconfig:"SAIGONMART_OTP_TTL" default:"5m"`
	MaxAttempts   int           `envconfig:"SAIGONMART_OTP_MAX_ATTEMPTS" default:"5"`
	RequestWindow time.Duration `envconfig:"SAIGONMART_OTP_REQUEST_WINDOW" default:"1m"`
	PhoneLimit    int           `envconfig:"SAIGONMART_OTP_PHONE_LIMIT" default:"3"`
	IPLimit       int           `envconfig:"SAIGONMART_OTP_IP_LIMIT" default:"20"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SAIGONMART_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"SAIGONMART_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"SAIGONMART_LOGIN_EMAIL_LIMIT" default:"5"`
}

// AdminBootstrapConfig seeds the first back-office account on startup. All
// three fields empty means no seeding.
type AdminBootstrapConfig struct {
	Email    string `envconfig:"SAIGONMART_ADMIN_BOOTSTRAP_EMAIL"`
	Password string `envconfig:"SAIGONMART_ADMIN_BOOTSTRAP_PASSWORD"`
	Name     string `envconfig:"SAIGONMART_ADMIN_BOOTSTRAP_NAME"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SAIGONMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SAIGONMART_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SAIGONMART_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type AssistantConfig struct {
	APIKey      string        `envconfig:"SAIGONMART_OPENAI_API_KEY"`
	BaseURL     string        `envconfig:"SAIGONMART_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Model       string        `envconfig:"SAIGONMART_OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout     time.Duration `envconfig:"SAIGONMART_OPENAI_TIMEOUT" default:"30s"`
	MaxTokens   int           `envconfig:"SAIGONMART_OPENAI_MAX_TOKENS" default:"512"`
	Temperature float64       `envconfig:"SAIGONMART_OPENAI_TEMPERATURE" default:"0.7"`
}

// Enabled reports whether the assistant endpoint should be mounted.
func (a AssistantConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, name := range requiredDBEnvVars {
		if parts[name] == "" {
			missing = append(missing, name)
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

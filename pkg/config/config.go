package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is the envconfig namespace for every setting below.
	EnvPrefix = "agromercado"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AGROMERCADO_DB_DSN"
	EnvDBHost = "AGROMERCADO_DB_HOST"
	EnvDBUser = "AGROMERCADO_DB_USER"
	EnvDBName = "AGROMERCADO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	Catalog       CatalogConfig
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
	Env          string `envconfig:"AGROMERCADO_APP_ENV" required:"true"`
	Port         string `envconfig:"AGROMERCADO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGROMERCADO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGROMERCADO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGROMERCADO_DB_DSN"`
	Driver string `envconfig:"AGROMERCADO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGROMERCADO_DB_HOST"`
	LegacyPort     int    `envconfig:"AGROMERCADO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGROMERCADO_DB_USER"`
	LegacyPassword string `envconfig:"AGROMERCADO_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGROMERCADO_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGROMERCADO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGROMERCADO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGROMERCADO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGROMERCADO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGROMERCADO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGROMERCADO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AGROMERCADO_REDIS_ADDR"`
	Password     string        `envconfig:"AGROMERCADO_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGROMERCADO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGROMERCADO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGROMERCADO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGROMERCADO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGROMERCADO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGROMERCADO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AGROMERCADO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AGROMERCADO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AGROMERCADO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AGROMERCADO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGROMERCADO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGROMERCADO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGROMERCADO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGROMERCADO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGROMERCADO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow         time.Duration `envconfig:"AGROMERCADO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginCorreoLimit    int           `envconfig:"AGROMERCADO_AUTH_RATE_LIMIT_LOGIN_CORREO_LIMIT" default:"5"`
	LoginIPLimit        int           `envconfig:"AGROMERCADO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow      time.Duration `envconfig:"AGROMERCADO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterCorreoLimit int           `envconfig:"AGROMERCADO_AUTH_RATE_LIMIT_REGISTER_CORREO_LIMIT" default:"3"`
	RegisterIPLimit     int           `envconfig:"AGROMERCADO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGROMERCADO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AGROMERCADO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AGROMERCADO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AGROMERCADO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"AGROMERCADO_GCS_BUCKET_NAME" required:"true"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"AGROMERCADO_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes converts the configured megabyte cap to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) * 1024 * 1024
}

type CatalogConfig struct {
	DefaultLimit  int    `envconfig:"AGROMERCADO_CATALOG_DEFAULT_LIMIT" default:"50"`
	ChangeChannel string `envconfig:"AGROMERCADO_CATALOG_CHANGE_CHANNEL" default:"am:catalog:cambios"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

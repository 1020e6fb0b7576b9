// Package config loads process configuration from INVENTORY_* environment
// variables. cmd binaries call godotenv first, so a local .env file works too.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	Inventory     InventoryConfig
	FeatureFlags  FeatureFlagsConfig
}

// Load reads the environment and rejects inconsistent settings, reporting
// every problem at once.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" {
		dsn, err := cfg.DB.dsnFromParts()
		if err != nil {
			return nil, err
		}
		cfg.DB.DSN = dsn
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) check() error {
	var errs error
	if !c.App.AuthRequired && c.App.IsProd() {
		errs = multierr.Append(errs, fmt.Errorf("%s cannot be disabled in %s", EnvAuthRequired, AppEnvProd))
	}
	if c.Redis.URL == "" && c.Redis.Address == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s or INVENTORY_REDIS_ADDR is required", EnvRedisURL))
	}
	if c.JWT.ExpirationMinutes <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvJWTExpMins))
	}
	if c.JWT.RefreshTokenTTL() <= time.Duration(c.JWT.ExpirationMinutes)*time.Minute {
		errs = multierr.Append(errs, fmt.Errorf("%s must exceed %s", EnvRefreshTokenTTLMinutes, EnvJWTExpMins))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = multierr.Append(errs, errors.New("rate limit requests and window must be positive"))
	}
	return errs
}

type AppConfig struct {
	Env          string   `envconfig:"INVENTORY_APP_ENV" required:"true"`
	Port         string   `envconfig:"INVENTORY_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"INVENTORY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"INVENTORY_LOG_WARN_STACK" default:"false"`
	AuthRequired bool     `envconfig:"INVENTORY_AUTH_REQUIRED" default:"true"`
	CORSOrigins  []string `envconfig:"INVENTORY_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool { return strings.EqualFold(a.Env, AppEnvDev) }
func (a AppConfig) IsProd() bool { return strings.EqualFold(a.Env, AppEnvProd) }

// DBConfig takes a full DSN, or the discrete host/user/name parts that older
// deployments still set.
type DBConfig struct {
	DSN string `envconfig:"INVENTORY_DB_DSN"`

	LegacyHost     string `envconfig:"INVENTORY_DB_HOST"`
	LegacyPort     int    `envconfig:"INVENTORY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INVENTORY_DB_USER"`
	LegacyPassword string `envconfig:"INVENTORY_DB_PASSWORD"`
	LegacyName     string `envconfig:"INVENTORY_DB_NAME"`
	LegacySSLMode  string `envconfig:"INVENTORY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INVENTORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INVENTORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) dsnFromParts() (string, error) {
	var missing []string
	for env, value := range map[string]string{EnvDBHost: db.LegacyHost, EnvDBUser: db.LegacyUser, EnvDBName: db.LegacyName} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("set %s, or all of %s", EnvDBDSN, strings.Join(legacyDBEnvVars, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.LegacyUser),
		Host:   net.JoinHostPort(db.LegacyHost, strconv.Itoa(db.LegacyPort)),
		Path:   db.LegacyName,
	}
	if db.LegacyPassword != "" {
		u.User = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}
	if db.LegacySSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.LegacySSLMode}}.Encode()
	}
	return u.String(), nil
}

type RedisConfig struct {
	URL          string        `envconfig:"INVENTORY_REDIS_URL"`
	Address      string        `envconfig:"INVENTORY_REDIS_ADDR"`
	Password     string        `envconfig:"INVENTORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"INVENTORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INVENTORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INVENTORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INVENTORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INVENTORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INVENTORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"INVENTORY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"INVENTORY_JWT_ISSUER" default:"inventory-api"`
	ExpirationMinutes      int    `envconfig:"INVENTORY_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"INVENTORY_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL is zero when unset or negative.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(max(j.RefreshTokenTTLMinutes, 0)) * time.Minute
}

// PasswordConfig holds the argon2id costs for new hashes.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"INVENTORY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"INVENTORY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"INVENTORY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"INVENTORY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"INVENTORY_ARGON_KEY_LEN" default:"32"`
}

// AuthRateLimitConfig bounds login and registration attempts per client IP
// and per submitted email.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"INVENTORY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"INVENTORY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"INVENTORY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"INVENTORY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"INVENTORY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"INVENTORY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type RateLimitConfig struct {
	Requests int           `envconfig:"INVENTORY_RATE_LIMIT_REQUESTS" default:"300"`
	Window   time.Duration `envconfig:"INVENTORY_RATE_LIMIT_WINDOW" default:"1m"`
}

type InventoryConfig struct {
	DefaultWarehouseCode string        `envconfig:"INVENTORY_DEFAULT_WAREHOUSE_CODE" default:"MAIN"`
	DefaultWarehouseName string        `envconfig:"INVENTORY_DEFAULT_WAREHOUSE_NAME" default:"Main Warehouse"`
	RecentTransactions   int           `envconfig:"INVENTORY_DASHBOARD_RECENT_TRANSACTIONS" default:"5"`
	IdempotencyTTL       time.Duration `envconfig:"INVENTORY_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"INVENTORY_AUTO_MIGRATE" default:"false"`
}

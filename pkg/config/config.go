package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	CORS     CORSConfig
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
	Env          string `envconfig:"PGROOM_APP_ENV" required:"true"`
	Port         string `envconfig:"PGROOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PGROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PGROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PGROOM_DB_DSN"`
	Driver string `envconfig:"PGROOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PGROOM_DB_HOST"`
	LegacyPort     int    `envconfig:"PGROOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PGROOM_DB_USER"`
	LegacyPassword string `envconfig:"PGROOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"PGROOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"PGROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PGROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PGROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PGROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PGROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"PGROOM_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PGROOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PGROOM_REDIS_ADDR"`
	Password     string        `envconfig:"PGROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"PGROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PGROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PGROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PGROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PGROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PGROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PGROOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PGROOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PGROOM_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RazorpayConfig struct {
	KeyID         string        `envconfig:"PGROOM_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string        `envconfig:"PGROOM_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"PGROOM_RAZORPAY_WEBHOOK_SECRET" required:"true"`
	Timeout       time.Duration `envconfig:"PGROOM_RAZORPAY_TIMEOUT" default:"30s"`
	Currency      string        `envconfig:"PGROOM_RAZORPAY_CURRENCY" default:"INR"`
	ReceiptPrefix string        `envconfig:"PGROOM_RAZORPAY_RECEIPT_PREFIX" default:"rent_"`
	// IdempotencyTTL bounds how long a processed webhook event id is remembered.
	IdempotencyTTL time.Duration `envconfig:"PGROOM_RAZORPAY_IDEMPOTENCY_TTL" default:"72h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PGROOM_CORS_ALLOWED_ORIGINS" default:"*"`
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

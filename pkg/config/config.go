package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Gemini       GeminiConfig
	Dispatch     DispatchConfig
	Generation   GenerationConfig
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
	Env          string `envconfig:"GROWTH_APP_ENV" required:"true"`
	Port         string `envconfig:"GROWTH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GROWTH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROWTH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GROWTH_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GROWTH_DB_DSN"`
	Driver string `envconfig:"GROWTH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GROWTH_DB_HOST"`
	LegacyPort     int    `envconfig:"GROWTH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GROWTH_DB_USER"`
	LegacyPassword string `envconfig:"GROWTH_DB_PASSWORD"`
	LegacyName     string `envconfig:"GROWTH_DB_NAME"`
	LegacySSLMode  string `envconfig:"GROWTH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROWTH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROWTH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROWTH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROWTH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GROWTH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GROWTH_REDIS_ADDR"`
	Password     string        `envconfig:"GROWTH_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROWTH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROWTH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROWTH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROWTH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROWTH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROWTH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GROWTH_AUTO_MIGRATE" default:"false"`
}

// GeminiConfig drives the outbound email content generator client.
type GeminiConfig struct {
	APIKey      string        `envconfig:"GROWTH_GEMINI_API_KEY"`
	Model       string        `envconfig:"GROWTH_GEMINI_MODEL" default:"gemini-1.5-flash"`
	BaseURL     string        `envconfig:"GROWTH_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout     time.Duration `envconfig:"GROWTH_GEMINI_TIMEOUT" default:"30s"`
	MaxAttempts int           `envconfig:"GROWTH_GEMINI_MAX_ATTEMPTS" default:"3"`
}

// DispatchConfig controls the prioritized email send cycle.
type DispatchConfig struct {
	BatchSize int           `envconfig:"GROWTH_DISPATCH_BATCH_SIZE" default:"5"`
	Interval  time.Duration `envconfig:"GROWTH_DISPATCH_INTERVAL" default:"60s"`
	LockTTL   time.Duration `envconfig:"GROWTH_DISPATCH_LOCK_TTL" default:"5m"`
}

// GenerationConfig sizes the background content-generation queue.
type GenerationConfig struct {
	Workers   int `envconfig:"GROWTH_GENERATION_WORKERS" default:"4"`
	QueueSize int `envconfig:"GROWTH_GENERATION_QUEUE_SIZE" default:"256"`
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

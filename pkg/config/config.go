package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Catalog  CatalogConfig
	Currency CurrencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GOCART_APP_ENV" default:"dev"`
	Port         string `envconfig:"GOCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GOCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GOCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the durable key-value backend that mirrors the
// registry and session (the browser localStorage role).
type StorageConfig struct {
	Backend    string `envconfig:"GOCART_STORAGE_BACKEND" default:"sqlite"`
	SQLitePath string `envconfig:"GOCART_STORAGE_SQLITE_PATH" default:"gocart.db"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case StorageBackendSQLite, StorageBackendRedis, StorageBackendMemory:
		return nil
	}
	return fmt.Errorf("unknown storage backend %q", s.Backend)
}

type RedisConfig struct {
	URL          string        `envconfig:"GOCART_REDIS_URL"`
	Address      string        `envconfig:"GOCART_REDIS_ADDR"`
	Password     string        `envconfig:"GOCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GOCART_JWT_SECRET" default:"dev-only-secret"`
	Issuer            string `envconfig:"GOCART_JWT_ISSUER" default:"gocart"`
	ExpirationMinutes int    `envconfig:"GOCART_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"GOCART_CATALOG_BASE_URL" default:"https://fakestoreapi.com"`
	Timeout time.Duration `envconfig:"GOCART_CATALOG_TIMEOUT" default:"10s"`
}

// CurrencyConfig carries the fixed USD to INR display rate used on receipts.
type CurrencyConfig struct {
	INRRate string `envconfig:"GOCART_CURRENCY_INR_RATE" default:"83.5"`
}

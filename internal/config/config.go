package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration values from environment.
type Config struct {
	AppPort string `env:"TASK_TRACKER_PORT" envDefault:"8080"`

	DBDriver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost            string        `env:"DB_HOST"`
	DBPort            string        `env:"DB_PORT" envDefault:"5432"`
	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME"`
	DBSSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBPath            string        `env:"DB_PATH" envDefault:"task_tracker.db"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	DBConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	DBQueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	DBAutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	// Pagination settings for task listing
	PageDefaultLimit int `env:"PAGE_DEFAULT_LIMIT" envDefault:"20"`
	PageMaxLimit     int `env:"PAGE_MAX_LIMIT" envDefault:"100"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadConfig loads configuration from an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from environment variables only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the combination of settings is usable.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("database configuration is incomplete")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("database configuration is incomplete: DB_PATH is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DBMaxOpenConns)
	}
	if c.DBConnectTimeout < time.Second {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be at least 1s, got %s", c.DBConnectTimeout)
	}
	if c.DBQueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive, got %s", c.DBQueryTimeout)
	}
	if c.PageDefaultLimit <= 0 || c.PageMaxLimit <= 0 {
		return fmt.Errorf("page limits must be positive")
	}
	if c.PageDefaultLimit > c.PageMaxLimit {
		return fmt.Errorf("PAGE_DEFAULT_LIMIT (%d) exceeds PAGE_MAX_LIMIT (%d)", c.PageDefaultLimit, c.PageMaxLimit)
	}
	return nil
}

// PostgresDSN builds the libpq-style connection string for the postgres driver.
// The connect timeout is rounded up to whole seconds; libpq reads 0 as no limit.
func (c *Config) PostgresDSN() string {
	timeout := int(math.Ceil(c.DBConnectTimeout.Seconds()))
	if timeout < 1 {
		timeout = 1
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		dsnValue(c.DBHost), dsnValue(c.DBPort), dsnValue(c.DBUser), dsnValue(c.DBPassword),
		dsnValue(c.DBName), dsnValue(c.DBSSLMode), timeout)
}

// dsnValue quotes v for a key=value connection string when it is empty or
// contains whitespace, quotes or backslashes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
	return "'" + escaped + "'"
}

// Package config assembles runtime configuration from the environment,
// with an optional YAML file as a base layer.
package config

import (
	"fmt"
	"os"
	"strconv"

	"sloozify/internal/database"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Built once at startup;
// treated as immutable afterwards.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	// DatabaseURL is the serverless Postgres connection string. Its
	// presence (and provider marker) drives backend selection.
	DatabaseURL string `yaml:"database_url"`

	MySQLHost     string `yaml:"mysql_host"`
	MySQLUser     string `yaml:"mysql_user"`
	MySQLPassword string `yaml:"mysql_password"`
	MySQLDatabase string `yaml:"mysql_database"`
	MySQLPoolSize int    `yaml:"mysql_pool_size"`

	CatalogDBPath string `yaml:"catalog_db_path"`
	SentryDSN     string `yaml:"sentry_dsn"`

	// InsecureDev relaxes cookie security and session key requirements
	// for local development.
	InsecureDev bool `yaml:"insecure_dev"`
}

// Load builds the configuration. Order: defaults, then the YAML file named
// by SLOOZIFY_CONFIG (if any), then environment variables. A .env file is
// honored the way the rest of the stack expects.
func Load() (*Config, error) {
	_ = godotenv.Load() // ok if missing

	cfg := &Config{
		ListenAddr:    ":8080",
		MySQLUser:     "root",
		MySQLDatabase: "commodities_db",
		MySQLPoolSize: 10,
		CatalogDBPath: "sloozify.db",
	}

	if path := os.Getenv("SLOOZIFY_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// applyEnv overrides cfg with any environment variables that are set.
func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.MySQLHost, "MYSQL_HOST")
	setString(&cfg.MySQLUser, "MYSQL_USER")
	setString(&cfg.MySQLPassword, "MYSQL_PASSWORD")
	setString(&cfg.MySQLDatabase, "MYSQL_DATABASE")
	setString(&cfg.CatalogDBPath, "CATALOG_DB_PATH")
	setString(&cfg.SentryDSN, "SENTRY_DSN")

	if v := os.Getenv("MYSQL_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MySQLPoolSize = n
		}
	}
	if v := os.Getenv("INSECURE_DEV"); v != "" {
		cfg.InsecureDev = v == "true" || v == "1"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Database maps the configuration onto the query router's view of it.
func (c *Config) Database() database.Config {
	return database.Config{
		PrimaryURL:    c.DatabaseURL,
		MySQLHost:     c.MySQLHost,
		MySQLUser:     c.MySQLUser,
		MySQLPassword: c.MySQLPassword,
		MySQLDatabase: c.MySQLDatabase,
		PoolSize:      c.MySQLPoolSize,
	}
}

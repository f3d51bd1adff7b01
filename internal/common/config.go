// Package common provides shared configuration and progress telemetry
// for the ocean profile tools.
package common

import (
	"os"
	"path/filepath"
)

// Config holds common configuration for all commands.
type Config struct {
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	DataDir            string
	LogLevel           string
}

// DefaultConfig returns configuration with sensible defaults,
// overridable via environment variables.
func DefaultConfig() *Config {
	return &Config{
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     9000,
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "wod"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		DataDir:            getEnv("WOD_DATA_DIR", "/var/lib/wod-prof-db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

// CatalogDir returns the directory holding catalog parquet files.
func (c *Config) CatalogDir() string {
	return filepath.Join(c.DataDir, "catalog")
}

// ResultsDir returns the directory holding aggregation output files.
func (c *Config) ResultsDir() string {
	return filepath.Join(c.DataDir, "results")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

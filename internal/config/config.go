// Package config loads server settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseFile is the store file name inside the data directory.
const DatabaseFile = "smart-park.db"

// Config holds the runtime settings.
type Config struct {
	// Server
	Addr      string
	StaticDir string
	Debug     bool

	// Storage
	DataDir  string
	SeedFile string

	// Background jobs
	SnapshotInterval   time.Duration
	CheckpointInterval time.Duration
}

// Load reads an optional .env file and then the PARKING_* environment
// variables, falling back to defaults.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:               getEnv("PARKING_ADDR", ":8099"),
		StaticDir:          getEnv("PARKING_STATIC_DIR", "./static"),
		Debug:              getEnvBool("PARKING_DEBUG", false),
		DataDir:            getEnv("PARKING_DATA_DIR", "./data"),
		SeedFile:           getEnv("PARKING_SEED_FILE", ""),
		SnapshotInterval:   getEnvDuration("PARKING_SNAPSHOT_INTERVAL", time.Minute),
		CheckpointInterval: getEnvDuration("PARKING_CHECKPOINT_INTERVAL", 10*time.Minute),
	}

	return cfg, nil
}

// DatabasePath returns the store file path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DatabaseFile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PARKING_ADDR", "PARKING_STATIC_DIR", "PARKING_DEBUG", "PARKING_DATA_DIR",
		"PARKING_SEED_FILE", "PARKING_SNAPSHOT_INTERVAL", "PARKING_CHECKPOINT_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8099", cfg.Addr)
	assert.Equal(t, "./static", cfg.StaticDir)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Empty(t, cfg.SeedFile)
	assert.Equal(t, time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, 10*time.Minute, cfg.CheckpointInterval)
	assert.Equal(t, filepath.Join("data", DatabaseFile), cfg.DatabasePath())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PARKING_ADDR", ":9000")
	t.Setenv("PARKING_DEBUG", "true")
	t.Setenv("PARKING_DATA_DIR", "/var/lib/parking")
	t.Setenv("PARKING_SEED_FILE", "layout.yaml")
	t.Setenv("PARKING_SNAPSHOT_INTERVAL", "15s")
	t.Setenv("PARKING_CHECKPOINT_INTERVAL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/var/lib/parking/"+DatabaseFile, cfg.DatabasePath())
	assert.Equal(t, "layout.yaml", cfg.SeedFile)
	assert.Equal(t, 15*time.Second, cfg.SnapshotInterval)
	assert.Equal(t, 10*time.Minute, cfg.CheckpointInterval)
}

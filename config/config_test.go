package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Full(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./content/scripts", cfg.ScriptsDir)
	assert.Equal(t, "./content/saves", cfg.SaveDir)
	assert.Equal(t, "./var/journal.db", cfg.JournalPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.StepTimeout)
	assert.True(t, cfg.LegacyResultVar)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, map[string]int{"herb": 3, "torch": 1}, cfg.World.Items)
}

func TestLoad_Invalid(t *testing.T) {
	for _, name := range []string{"bad_level.yaml", "bad_items.yaml"} {
		_, err := Load(filepath.Join("testdata", name))
		assert.Error(t, err, name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestStateOptions(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)

	opts := cfg.StateOptions()
	assert.Equal(t, int64(42), opts.Seed)
	assert.Equal(t, int64(250), opts.Money)
	assert.Equal(t, int64(3600), opts.Time)

	opts.Items["herb"] = 99
	assert.Equal(t, 3, cfg.World.Items["herb"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zap.WarnLevel, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

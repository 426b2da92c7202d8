// Package config loads the ruinscript YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/ruinscript/engine/state"
)

type Config struct {
	ScriptsDir      string        `yaml:"scripts_dir"`
	SaveDir         string        `yaml:"save_dir"`
	JournalPath     string        `yaml:"journal_path"`
	LogLevel        string        `yaml:"log_level"`
	StepTimeout     time.Duration `yaml:"step_timeout"`
	LegacyResultVar bool          `yaml:"legacy_result_var"`
	ListenAddr      string        `yaml:"listen_addr"`
	World           WorldConfig   `yaml:"world"`
}

// WorldConfig seeds a fresh simulation state.
type WorldConfig struct {
	Seed  int64          `yaml:"seed"`
	Money int64          `yaml:"money"`
	Time  int64          `yaml:"time"`
	Items map[string]int `yaml:"items,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ScriptsDir:  "scripts",
		SaveDir:     "saves",
		LogLevel:    "info",
		StepTimeout: 2 * time.Second,
		ListenAddr:  "127.0.0.1:8090",
		World: WorldConfig{
			Seed:  1,
			Money: 100,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.ScriptsDir = strings.TrimSpace(c.ScriptsDir)
	c.SaveDir = strings.TrimSpace(c.SaveDir)
	c.JournalPath = strings.TrimSpace(c.JournalPath)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ScriptsDir == "" {
		c.ScriptsDir = Default().ScriptsDir
	}
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.StepTimeout < 0 {
		return fmt.Errorf("step_timeout must not be negative")
	}
	if c.World.Money < 0 {
		return fmt.Errorf("world.money must not be negative")
	}
	for id, n := range c.World.Items {
		if n <= 0 {
			return fmt.Errorf("world.items.%s: count must be positive", id)
		}
	}
	return nil
}

// StateOptions converts the world section for state.NewState.
func (c Config) StateOptions() state.Options {
	items := make(map[string]int, len(c.World.Items))
	for id, n := range c.World.Items {
		items[id] = n
	}
	return state.Options{
		Seed:  c.World.Seed,
		Money: c.World.Money,
		Time:  c.World.Time,
		Items: items,
	}
}

// ParseLevel maps debug|info|warn|error onto a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "debug":
		return zap.DebugLevel, nil
	case "info", "":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	}
	return zap.InfoLevel, fmt.Errorf("unknown log_level %q", s)
}

// NewLogger builds a development-style logger at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/ruinscript/config"
	"github.com/nathoo/ruinscript/engine"
	"github.com/nathoo/ruinscript/engine/state"
	"github.com/nathoo/ruinscript/journal"
	"github.com/nathoo/ruinscript/loader"
	"github.com/nathoo/ruinscript/types"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	scriptsDir string // overrides scripts_dir
	logLevel   string // overrides log_level
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ruinscript",
		Short:         "Run coroutine event scripts",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.scriptsDir, "scripts", "", "script library directory (overrides scripts_dir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug|info|warn|error (overrides log_level)")

	cmd.AddCommand(newPlayCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newRunsCommand(opts))
	return cmd
}

// app is everything a command needs to run scripts.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	lib     *loader.Library
	journal journal.Journal
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.scriptsDir != "" {
		cfg.ScriptsDir = o.scriptsDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// setup loads config, logger, script library and journal. Callers must
// call close.
func (o *rootOptions) setup() (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	lib, err := loader.Load(cfg.ScriptsDir)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("loading scripts: %w", err)
	}

	var j journal.Journal = journal.Nop{}
	if cfg.JournalPath != "" {
		db, err := journal.OpenSQLite(cfg.JournalPath)
		if err != nil {
			_ = log.Sync()
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		j = db
	}

	log.Debug("setup done",
		zap.String("scripts", cfg.ScriptsDir),
		zap.Int("count", len(lib.Scripts)),
		zap.String("journal", cfg.JournalPath),
	)
	return &app{cfg: cfg, log: log, lib: lib, journal: j}, nil
}

func (a *app) close() {
	if err := a.journal.Close(); err != nil {
		a.log.Warn("closing journal", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) engineOptions() engine.Options {
	return engine.Options{
		Logger:          a.log,
		Journal:         a.journal,
		StepTimeout:     a.cfg.StepTimeout,
		LegacyResultVar: a.cfg.LegacyResultVar,
	}
}

func (a *app) newState() *types.State {
	return state.NewState(a.cfg.StateOptions())
}

// Package cli wires the tcm commands. Every command shares one config,
// logger, API client and snapshot cache, opened before the command runs.
package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tcm/internal/api"
	"github.com/nikbrunner/tcm/internal/logging"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/storage"
	"github.com/nikbrunner/tcm/internal/tui"
	"github.com/spf13/cobra"
)

// Flags holds the persistent command-line flags.
type Flags struct {
	ConfigPath string
	ServerURL  string
	EnvFile    string
}

// Env is what commands run against.
type Env struct {
	Config *storage.Config
	Logger *logging.Logger
	Client *api.Client
	Cache  storage.Storage
}

// Close releases the cache and the log file. It is safe to call twice.
func (e *Env) Close() error {
	var errs []error
	if e.Cache != nil {
		errs = append(errs, storage.Close(e.Cache))
		e.Cache = nil
	}
	if e.Logger != nil {
		errs = append(errs, e.Logger.Close())
		e.Logger = nil
	}
	return errors.Join(errs...)
}

// closing wraps run so env is released even when the command fails.
func closing(env *Env, run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if cerr := env.Close(); cerr != nil && err == nil {
			return cerr
		}
		return err
	}
}

// Setup loads .env and the config file, then opens the logger, the API
// client and the cache. Flags override the config.
func Setup(flags Flags) (*Env, error) {
	var envFiles []string
	if flags.EnvFile != "" {
		envFiles = append(envFiles, flags.EnvFile)
	}
	if err := storage.LoadEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	path := flags.ConfigPath
	if path == "" {
		p, err := storage.ConfigFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if flags.ServerURL != "" {
		cfg.ServerURL = flags.ServerURL
	}

	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	env := &Env{Config: cfg, Logger: logger}

	env.Client, err = api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(logger.Logger),
	)
	if err != nil {
		_ = env.Close()
		return nil, err
	}

	if cfg.CacheFile != "" {
		cache, err := storage.OpenStorage(cfg.CacheFile)
		if err != nil {
			// Non-fatal: everything but offline reads works without it
			logger.Warn("cannot open snapshot cache", "path", cfg.CacheFile, "err", err)
		} else {
			env.Cache = cache
		}
	}

	logger.Debug("setup", "server", cfg.ServerURL, "config", path)
	return env, nil
}

// snapshot fetches the current snapshot, or reads the cache when offline.
// A fetched snapshot refreshes the cache.
func (e *Env) snapshot(ctx context.Context, offline bool) (*model.Snapshot, error) {
	if offline {
		if e.Cache == nil {
			return nil, errors.New("no snapshot cache configured")
		}
		return e.Cache.Load()
	}

	snap, err := e.Client.List(ctx)
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		if err := e.Cache.Save(snap); err != nil {
			e.Logger.Warn("cannot write snapshot cache", "err", err)
		}
	}
	return snap, nil
}

// NewRootCommand builds the tcm command tree. Without a subcommand tcm
// opens the interactive client.
func NewRootCommand(version string) *cobra.Command {
	var flags Flags
	env := &Env{}

	root := &cobra.Command{
		Use:           "tcm",
		Short:         "Terminal client for a test-case management backend",
		Long:          "Browse, search, create, edit, move and reorder structured test cases stored by a test-case backend.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e, err := Setup(flags)
			if err != nil {
				return err
			}
			*env = *e
			return nil
		},
	}
	root.RunE = closing(env, func(cmd *cobra.Command, args []string) error {
		return runTUI(env)
	})

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "config file (default $TCM_CONFIG or ~/.config/tcm/config.json)")
	root.PersistentFlags().StringVarP(&flags.ServerURL, "server", "s", "", "backend URL, overrides the config")
	root.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "dotenv file to load (default .env)")

	root.AddCommand(
		newListCommand(env),
		newSearchCommand(env),
		newShowCommand(env),
		newMkdirCommand(env),
		newImportCommand(env),
		newExportCommand(env),
	)
	for _, c := range root.Commands() {
		c.RunE = closing(env, c.RunE)
	}
	return root
}

func runTUI(env *Env) error {
	app := tui.NewApp(tui.AppParams{
		Backend: env.Client,
		Config:  env.Config,
		Cache:   env.Cache,
		Logger:  env.Logger.Logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

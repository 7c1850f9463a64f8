// Package app wires the CLI configuration, the project configuration, the
// extension set and the runtime environment into a runnable application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/forgerun/internal/config"
	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/provider"
	"github.com/vk/forgerun/internal/runtime"
	"github.com/vk/forgerun/internal/task"
)

// EnvironmentHook is optionally implemented by extensions that want to
// decorate the runtime environment after construction of the network
// wiring, in addition to registering tasks.
type EnvironmentHook interface {
	ExtendEnvironment(env *runtime.Environment) error
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	cfg    *Config
	env    *runtime.Environment
}

// NewApp constructs the application: it builds an isolated logger, loads the
// project configuration, registers all extensions, and constructs the
// runtime environment. Construction is atomic from the caller's perspective:
// any failure returns an error and no partial App.
func NewApp(outW, errW io.Writer, cfg *Config, exts ...task.Extension) (*App, error) {
	logger := newLogger(cfg, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	projectCfg, err := config.Load(ctx, cfg.ProjectDir, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Project configuration loaded.", "default_network", projectCfg.DefaultNetwork)

	if len(exts) == 0 {
		exts = builtinExtensions()
	}

	reg := task.NewRegistry()
	var hooks []runtime.Hook
	for _, ext := range exts {
		if err := ext.Register(reg); err != nil {
			return nil, fmt.Errorf("extension registration failed: %w", err)
		}
		if h, ok := ext.(EnvironmentHook); ok {
			hooks = append(hooks, h.ExtendEnvironment)
		}
	}
	logger.Debug("All extensions registered.", "extensions", len(exts), "tasks", len(reg.Names()))

	env, err := runtime.New(projectCfg, runtime.RunArgs{Network: cfg.Network}, reg, hooks, provider.DefaultFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to construct runtime environment: %w", err)
	}
	logger.Debug("Runtime environment constructed.", "network", env.Network().Name)

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		cfg:    cfg,
		env:    env,
	}, nil
}

// Environment returns the runtime environment. This is primarily for testing.
func (a *App) Environment() *runtime.Environment {
	return a.env
}

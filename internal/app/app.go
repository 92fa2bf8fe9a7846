package app

import (
	"io"
	"log/slog"

	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/internal/suite"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   *suite.Loader
	registry *registry.Registry
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// When no modules are given the compiled-in core modules are registered.
func NewApp(outW io.Writer, config *Config, loader *suite.Loader, modules ...registry.Module) *App {
	logger := newLogger(config, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All step modules registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		loader:   loader,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

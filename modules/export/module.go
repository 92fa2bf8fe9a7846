// Package export converts a trained checkpoint into an inference model.
package export

import (
	"context"
	"fmt"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the export step handler with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("export", &registry.RegisteredStep{
		Description: "Exports the trained model for inference.",
		Fn:          onRunExport,
	})
}

// onRunExport is the handler for the 'export' step.
func onRunExport(ctx context.Context, step *registry.Step) (*registry.Result, error) {
	logger := ctxlog.FromContext(ctx).With("step", "export")
	if step.Command == "" {
		return nil, fmt.Errorf("export step has no command")
	}

	logger.Info("📦 Exporting model.", "command", step.Command)
	runner := &shell.Runner{Workdir: step.Workdir, Env: step.Env}
	res, err := runner.Run(ctx, step.Command)
	if err != nil {
		return nil, fmt.Errorf("export command: %w", err)
	}

	if !res.Ok() {
		logger.Error("Export command failed.", "exit_code", res.ExitCode)
	}
	return &registry.Result{
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		LogTail:  registry.Tail(res.Stdout, res.Stderr),
	}, nil
}

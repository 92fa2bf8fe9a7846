// Package infer runs the inference phase of a pipeline run.
package infer

import (
	"context"
	"fmt"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the infer step handler with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("infer", &registry.RegisteredStep{
		Description: "Runs the fixture's inference command against the exported model.",
		Fn:          onRunInfer,
	})
}

// onRunInfer is the handler for the 'infer' step.
func onRunInfer(ctx context.Context, step *registry.Step) (*registry.Result, error) {
	logger := ctxlog.FromContext(ctx).With("step", "infer")
	if step.Command == "" {
		return nil, fmt.Errorf("infer step has no command")
	}

	logger.Info("🔮 Inference started.", "command", step.Command)
	runner := &shell.Runner{Workdir: step.Workdir, Env: step.Env}
	res, err := runner.Run(ctx, step.Command)
	if err != nil {
		return nil, fmt.Errorf("inference command: %w", err)
	}

	if res.Ok() {
		logger.Info("🔮 Inference finished.", "duration", res.Duration, "output_bytes", len(res.Stdout))
	} else {
		logger.Error("Inference command failed.", "exit_code", res.ExitCode)
	}
	return &registry.Result{
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		LogTail:  registry.Tail(res.Stdout, res.Stderr),
	}, nil
}

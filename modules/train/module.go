// Package train runs the training phase of a pipeline run.
package train

import (
	"context"
	"fmt"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the train step handler with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("train", &registry.RegisteredStep{
		Description: "Runs the fixture's training command for the selected mode.",
		Fn:          onRunTrain,
	})
}

// onRunTrain is the handler for the 'train' step.
func onRunTrain(ctx context.Context, step *registry.Step) (*registry.Result, error) {
	logger := ctxlog.FromContext(ctx).With("step", "train")
	if step.Command == "" {
		return nil, fmt.Errorf("train step has no command")
	}

	logger.Info("🏋️ Training started.", "command", step.Command)
	runner := &shell.Runner{Workdir: step.Workdir, Env: step.Env}
	res, err := runner.Run(ctx, step.Command)
	if err != nil {
		return nil, fmt.Errorf("train command: %w", err)
	}

	if res.Ok() {
		logger.Info("🏋️ Training finished.", "duration", res.Duration)
	} else {
		logger.Error("Training command failed.", "exit_code", res.ExitCode)
	}
	return &registry.Result{
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		LogTail:  registry.Tail(res.Stdout, res.Stderr),
	}, nil
}

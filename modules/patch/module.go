// Package patch applies a fixture's config patch command before training.
package patch

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/internal/yamlpatch"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the patch step handler with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("patch", &registry.RegisteredStep{
		Description: "Applies the fixture's stream-edit command to the pipeline's YAML config.",
		Fn:          onRunPatch,
	})
}

// onRunPatch is the handler for the 'patch' step. The stream-edit command is
// applied natively rather than shelled out, so a patch that would corrupt
// the YAML config fails the run before training starts.
func onRunPatch(ctx context.Context, step *registry.Step) (*registry.Result, error) {
	logger := ctxlog.FromContext(ctx).With("step", "patch")
	if step.Command == "" {
		return nil, fmt.Errorf("patch step has no command")
	}

	p, err := yamlpatch.ParseSedCommand(step.Command)
	if err != nil {
		return nil, fmt.Errorf("parsing patch command: %w", err)
	}

	var keys []string
	for _, sub := range p.Substitutions() {
		keys = append(keys, sub.Key())
	}
	logger.Info("🩹 Patching pipeline config.", "file", p.File, "keys", keys)

	start := time.Now()
	if err := p.Apply(step.Workdir); err != nil {
		return nil, fmt.Errorf("applying patch: %w", err)
	}
	return &registry.Result{Duration: time.Since(start)}, nil
}

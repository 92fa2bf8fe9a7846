// Package builder translates a loaded suite into an executable step graph.
// For every run it parses and validates the fixture, decodes the pipeline
// profile, picks a device, and wires one chain per mode. The config patch
// runs once per run and is shared by all of the run's mode chains, since the
// patched YAML file is the same for each.
package builder

import (
	"context"
	"fmt"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/dag"
	"github.com/vk/traingrid/internal/device"
	"github.com/vk/traingrid/internal/fixture"
	"github.com/vk/traingrid/internal/profile"
	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/internal/suite"
)

// RunPlan describes one fixture/mode chain in the built graph, keeping the
// metadata the results store needs after execution.
type RunPlan struct {
	RunName string
	Fixture string
	Mode    profile.Mode
	Device  device.Selection

	// NodeIDs lists this chain's nodes in dependency order. The shared
	// patch node appears in the first chain of its run only.
	NodeIDs []string
}

// Build constructs the full step graph for a suite.
func Build(ctx context.Context, s *suite.Suite, caps device.Capabilities) (*dag.Graph, []*RunPlan, error) {
	logger := ctxlog.FromContext(ctx)
	graph := dag.New()
	var plans []*RunPlan

	for _, run := range s.Runs {
		f, err := fixture.ParseFile(run.FixturePath)
		if err != nil {
			return nil, nil, fmt.Errorf("run %q: %w", run.Name, err)
		}
		if err := f.Validate(); err != nil {
			return nil, nil, fmt.Errorf("run %q: fixture %s: %w", run.Name, run.FixturePath, err)
		}
		p, err := profile.Decode(f)
		if err != nil {
			return nil, nil, fmt.Errorf("run %q: fixture %s: %w", run.Name, run.FixturePath, err)
		}

		useGPU := p.UseGPU
		if run.UseGPU != nil {
			useGPU = *run.UseGPU
		}
		sel := caps.Select(p.DeviceLists, useGPU)
		logger.Debug("Device selected for run.", "run", run.Name, "model", p.ModelName, "device", sel.String())

		patchID := ""
		if p.PatchCommand != "" {
			patchID = run.Name + "/patch"
			step := &registry.Step{Kind: "patch", Command: p.PatchCommand, Workdir: run.Workdir, Env: run.Env}
			if _, err := graph.AddNode(patchID, step); err != nil {
				return nil, nil, err
			}
		}

		for i, mode := range run.Modes {
			plan, err := buildChain(graph, run, p, mode, sel, patchID)
			if err != nil {
				return nil, nil, fmt.Errorf("run %q, mode %q: %w", run.Name, mode, err)
			}
			if i == 0 && patchID != "" {
				plan.NodeIDs = append([]string{patchID}, plan.NodeIDs...)
			}
			plans = append(plans, plan)
		}
	}

	logger.Debug("Step graph built.", "nodes", len(graph.Nodes), "chains", len(plans))
	return graph, plans, nil
}

// buildChain wires the patch → train → export → infer chain for one mode.
// Steps the fixture leaves unset are simply absent from the chain.
func buildChain(graph *dag.Graph, run *suite.Run, p *profile.Profile, mode profile.Mode, sel device.Selection, patchID string) (*RunPlan, error) {
	plan := &RunPlan{
		RunName: run.Name,
		Fixture: run.FixturePath,
		Mode:    mode,
		Device:  sel,
	}

	prefix := fmt.Sprintf("%s/%s", run.Name, mode)
	deps := []string{}
	if patchID != "" {
		deps = append(deps, patchID)
	}

	addStep := func(kind, command string) error {
		id := prefix + "/" + kind
		step := &registry.Step{Kind: kind, Command: command, Workdir: run.Workdir, Env: run.Env}
		if _, err := graph.AddNode(id, step, deps...); err != nil {
			return err
		}
		plan.NodeIDs = append(plan.NodeIDs, id)
		deps = []string{id}
		return nil
	}

	if mode.Trains() {
		command, err := p.RenderTrainCommand(mode, map[string]string{"device": sel.String()})
		if err != nil {
			return nil, err
		}
		if err := addStep("train", command); err != nil {
			return nil, err
		}
		if p.ExportCommand != "" {
			if err := addStep("export", p.ExportCommand); err != nil {
				return nil, err
			}
		}
	}

	if p.InferCommand != "" {
		if err := addStep("infer", p.InferCommand); err != nil {
			return nil, err
		}
	}

	if len(plan.NodeIDs) == 0 && patchID == "" {
		return nil, fmt.Errorf("fixture defines no executable steps for this mode")
	}
	return plan, nil
}

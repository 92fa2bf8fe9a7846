package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vk/traingrid/internal/builder"
	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/dag"
	"github.com/vk/traingrid/internal/device"
	"github.com/vk/traingrid/internal/report"
	"github.com/vk/traingrid/internal/store"
)

// Run executes the main application logic based on the App's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	s, err := a.loader.Load(ctx, a.config.SuitePath)
	if err != nil {
		return fmt.Errorf("failed to load suite: %w", err)
	}
	if a.config.Workers > 0 {
		s.Workers = a.config.Workers
	}

	caps := device.Probe()
	a.logger.Info("Host probed.", "cpu", caps.CPUBrand, "logical_cores", caps.LogicalCores, "avx2", caps.AVX2, "avx512", caps.AVX512)

	graph, plans, err := builder.Build(ctx, s, caps)
	if err != nil {
		return fmt.Errorf("failed to build step graph: %w", err)
	}
	a.logger.Debug("Step graph built.", "node_count", len(graph.Nodes), "chains", len(plans))

	if a.config.ValidateOnly {
		for _, plan := range plans {
			fmt.Fprintf(a.outW, "OK %s (%s) device=%s steps=%d\n", plan.RunName, plan.Mode, plan.Device, len(plan.NodeIDs))
		}
		a.logger.Info("✅ Validation complete.", "chains", len(plans))
		return nil
	}

	// A step kind without a handler is a mismatch between compiled modules
	// and the builder, so we panic rather than return an error.
	if err := a.registry.Validate(graph.StepKinds()); err != nil {
		panic(err)
	}

	st, err := store.Open(s.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open results store: %w", err)
	}
	defer st.Close()

	started := time.Now()
	a.logger.Info("🚀 Starting concurrent execution...", "workers", s.Workers, "steps", len(graph.Nodes))
	exec := dag.NewExecutor(graph, s.Workers, a.registry)
	execErr := exec.Run(ctx)
	finished := time.Now()
	a.logger.Info("🏁 Execution finished.", "duration", finished.Sub(started))

	runIDs, err := a.record(st, graph, plans, started, finished)
	if err != nil {
		return err
	}

	summary, err := st.Summarize(runIDs)
	if err != nil {
		return err
	}
	a.printSummary(summary)

	if s.ReportURL != "" {
		rep, err := a.buildReport(st, summary, runIDs, caps, finished)
		if err == nil {
			err = report.Upload(ctx, s.ReportURL, rep)
		}
		if err != nil {
			a.logger.Error("Report upload failed.", "error", err)
			if execErr == nil {
				execErr = err
			}
		}
	}

	a.logger.Debug("App.Run method finished.")
	return execErr
}

// buildReport reads each run's recorded steps back from the store and
// assembles the upload document.
func (a *App) buildReport(st *store.Store, summary *store.Summary, runIDs []int64, caps device.Capabilities, at time.Time) (*report.Report, error) {
	steps := make([][]store.StepRecord, 0, len(runIDs))
	for _, id := range runIDs {
		recs, err := st.StepsForRun(id)
		if err != nil {
			return nil, err
		}
		steps = append(steps, recs)
	}
	return report.FromSummary(summary, steps, caps, at), nil
}

// record writes every chain's outcome to the results store and returns the
// inserted run IDs.
func (a *App) record(st *store.Store, graph *dag.Graph, plans []*builder.RunPlan, started, finished time.Time) ([]int64, error) {
	runIDs := make([]int64, 0, len(plans))
	for _, plan := range plans {
		steps := make([]store.StepRecord, 0, len(plan.NodeIDs))
		status := store.StatusSkipped
		for _, nodeID := range plan.NodeIDs {
			node := graph.Nodes[nodeID]
			rec := stepRecord(node)
			steps = append(steps, rec)
			switch rec.Status {
			case store.StatusFailed:
				status = store.StatusFailed
			case store.StatusPassed:
				if status != store.StatusFailed {
					status = store.StatusPassed
				}
			}
		}

		runID, err := st.RecordRun(store.RunRecord{
			Name:       plan.RunName,
			Fixture:    plan.Fixture,
			Mode:       string(plan.Mode),
			Device:     plan.Device.String(),
			Status:     status,
			StartedAt:  started,
			FinishedAt: finished,
		})
		if err != nil {
			return nil, err
		}
		for _, rec := range steps {
			if err := st.RecordStep(runID, rec); err != nil {
				return nil, err
			}
		}
		runIDs = append(runIDs, runID)
	}
	return runIDs, nil
}

// stepRecord translates one executed node into its store representation.
func stepRecord(node *dag.Node) store.StepRecord {
	rec := store.StepRecord{NodeID: node.ID, Kind: node.Step.Kind}

	if node.Result != nil {
		rec.ExitCode = node.Result.ExitCode
		rec.Duration = node.Result.Duration
		rec.LogTail = node.Result.LogTail
	}

	switch dag.NodeState(node.State.Load()) {
	case dag.Done:
		rec.Status = store.StatusPassed
	case dag.Failed:
		rec.Status = store.StatusFailed
		if node.Error != nil {
			rec.Error = node.Error.Error()
			if strings.HasPrefix(rec.Error, "skipped") {
				rec.Status = store.StatusSkipped
			}
		}
	default:
		rec.Status = store.StatusSkipped
		rec.Error = "never scheduled"
	}
	return rec
}

// printSummary writes the human-readable end-of-suite summary.
func (a *App) printSummary(summary *store.Summary) {
	fmt.Fprintf(a.outW, "\nSuite summary: %d total, %d passed, %d failed, %d skipped\n",
		summary.Total, summary.Passed, summary.Failed, summary.Skipped)
	for _, run := range summary.Runs {
		fmt.Fprintf(a.outW, "  %-7s  %s (%s) on %s\n", run.Status, run.Name, run.Mode, run.Device)
	}
}

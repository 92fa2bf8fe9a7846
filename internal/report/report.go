// Package report assembles a JSON run report and uploads it to a
// pre-configured URL, typically a pre-signed object-storage link consumed by
// a results dashboard.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/device"
	"github.com/vk/traingrid/internal/store"
)

// Host describes the machine the suite ran on.
type Host struct {
	CPUBrand     string   `json:"cpu_brand"`
	LogicalCores int      `json:"logical_cores"`
	AVX2         bool     `json:"avx2"`
	AVX512       bool     `json:"avx512"`
	VisibleGPUs  []string `json:"visible_gpus,omitempty"`
}

// Totals aggregates chain outcomes.
type Totals struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Step is one recorded step outcome within a run.
type Step struct {
	Node       string `json:"node"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Run is one fixture/mode outcome.
type Run struct {
	Name   string `json:"name"`
	Mode   string `json:"mode"`
	Device string `json:"device"`
	Status string `json:"status"`
	Steps  []Step `json:"steps,omitempty"`
}

// Report is the uploaded document.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Host        Host      `json:"host"`
	Totals      Totals    `json:"totals"`
	Runs        []Run     `json:"runs"`
}

// FromSummary builds a report from a store summary, the per-run step records
// (index-aligned with summary.Runs), and the probed host.
func FromSummary(summary *store.Summary, steps [][]store.StepRecord, caps device.Capabilities, at time.Time) *Report {
	r := &Report{
		GeneratedAt: at,
		Host: Host{
			CPUBrand:     caps.CPUBrand,
			LogicalCores: caps.LogicalCores,
			AVX2:         caps.AVX2,
			AVX512:       caps.AVX512,
			VisibleGPUs:  caps.VisibleGPUs,
		},
		Totals: Totals{
			Total:   summary.Total,
			Passed:  summary.Passed,
			Failed:  summary.Failed,
			Skipped: summary.Skipped,
		},
	}
	for i, run := range summary.Runs {
		rr := Run{Name: run.Name, Mode: run.Mode, Device: run.Device, Status: run.Status}
		if i < len(steps) {
			for _, rec := range steps[i] {
				rr.Steps = append(rr.Steps, Step{
					Node:       rec.NodeID,
					Kind:       rec.Kind,
					Status:     rec.Status,
					ExitCode:   rec.ExitCode,
					DurationMs: rec.Duration.Milliseconds(),
					Error:      rec.Error,
				})
			}
		}
		r.Runs = append(r.Runs, rr)
	}
	return r
}

// httpClient is shared across uploads to reuse TCP connections.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Upload PUTs the report as JSON to url.
func Upload(ctx context.Context, url string, r *Report) error {
	logger := ctxlog.FromContext(ctx)

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating report upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("report upload failed with status %s", resp.Status)
	}
	logger.Info("📤 Report uploaded.", "bytes", len(body), "status", resp.Status)
	return nil
}

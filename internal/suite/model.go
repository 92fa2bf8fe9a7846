package suite

import "github.com/vk/traingrid/internal/profile"

// Suite is the format-agnostic model of one harness invocation.
type Suite struct {
	StorePath string
	ReportURL string
	Workers   int
	Runs      []*Run
}

// Run is one fixture/mode selection from a manifest.
type Run struct {
	Name        string
	FixturePath string
	Modes       []profile.Mode
	Workdir     string
	Env         map[string]string

	// UseGPU overrides the fixture's own use_gpu value when set.
	UseGPU *bool
}

const (
	defaultWorkers   = 2
	defaultStorePath = "traingrid.db"
)

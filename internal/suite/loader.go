package suite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/fsutil"
	"github.com/vk/traingrid/internal/profile"
)

// Loader reads suite manifests from disk.
type Loader struct{}

// NewLoader creates a suite manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .hcl manifest under path (a single file or a directory)
// and merges them into one Suite. Relative fixture and workdir paths are
// resolved against the directory of the manifest that declares them.
func (l *Loader) Load(ctx context.Context, path string) (*Suite, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("suite path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("scanning suite directory: %w", err)
		}
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl manifests found under %s", path)
	}
	logger.Debug("Found suite manifests.", "count", len(files))

	suite := &Suite{Workers: defaultWorkers}
	parser := hclparse.NewParser()
	seenSettings := false

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing manifest %s: %w", file, diags)
		}

		var cfg suiteConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &cfg); diags.HasErrors() {
			return nil, fmt.Errorf("decoding manifest %s: %w", file, diags)
		}

		if cfg.Settings != nil {
			if seenSettings {
				return nil, fmt.Errorf("manifest %s: duplicate settings block across suite", file)
			}
			seenSettings = true
			applySettings(suite, cfg.Settings, filepath.Dir(file))
		}

		for _, rb := range cfg.Runs {
			run, err := translateRun(rb, filepath.Dir(file))
			if err != nil {
				return nil, fmt.Errorf("manifest %s: %w", file, err)
			}
			suite.Runs = append(suite.Runs, run)
		}
	}

	if suite.StorePath == "" {
		// The default store lands next to the first manifest, not in the
		// process working directory, matching how explicit paths resolve.
		suite.StorePath = resolve(filepath.Dir(files[0]), defaultStorePath)
	}

	if err := validate(suite); err != nil {
		return nil, err
	}
	logger.Debug("Suite loaded.", "runs", len(suite.Runs), "workers", suite.Workers)
	return suite, nil
}

func applySettings(s *Suite, b *settingsBlock, baseDir string) {
	if b.StorePath != "" {
		s.StorePath = resolve(baseDir, b.StorePath)
	}
	if b.ReportURL != "" {
		s.ReportURL = b.ReportURL
	}
	if b.Workers > 0 {
		s.Workers = b.Workers
	}
}

// translateRun converts the HCL-specific run schema into the agnostic model.
func translateRun(rb *runBlock, baseDir string) (*Run, error) {
	if rb.Fixture == "" {
		return nil, fmt.Errorf("run %q: fixture path is required", rb.Name)
	}
	if len(rb.Modes) == 0 {
		return nil, fmt.Errorf("run %q: at least one mode is required", rb.Name)
	}

	run := &Run{
		Name:        rb.Name,
		FixturePath: resolve(baseDir, rb.Fixture),
		Workdir:     resolve(baseDir, rb.Workdir),
		Env:         rb.Env,
		UseGPU:      rb.UseGPU,
	}
	for _, label := range rb.Modes {
		mode, err := profile.ParseMode(label)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", rb.Name, err)
		}
		run.Modes = append(run.Modes, mode)
	}
	return run, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func validate(s *Suite) error {
	if len(s.Runs) == 0 {
		return fmt.Errorf("suite declares no runs")
	}
	seen := make(map[string]bool, len(s.Runs))
	for _, run := range s.Runs {
		if seen[run.Name] {
			return fmt.Errorf("duplicate run name %q", run.Name)
		}
		seen[run.Name] = true
	}
	return nil
}

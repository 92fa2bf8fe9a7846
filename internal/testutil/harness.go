// Package testutil provides shared helpers for integration tests: a
// thread-safe log buffer and a harness that materializes suite manifests and
// fixtures into a temp directory and runs the full application against them.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/traingrid/internal/app"
	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/internal/suite"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
	Dir    string
}

// RunHarnessTest writes the given files (suite manifests, fixtures, configs)
// into a fresh temp directory and runs the application against it with a
// default background context.
func RunHarnessTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunHarnessTestWithConfig(t, files, app.Config{}, modules...)
}

// RunHarnessTestWithConfig is RunHarnessTest with overrides for the app
// configuration. The SuitePath is always the temp directory.
func RunHarnessTestWithConfig(t *testing.T, files map[string]string, overrides app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	appConfig := &app.Config{
		SuitePath:    tmpDir,
		LogLevel:     "debug",
		LogFormat:    "text",
		Workers:      overrides.Workers,
		ValidateOnly: overrides.ValidateOnly,
	}
	if overrides.LogLevel != "" {
		appConfig.LogLevel = overrides.LogLevel
	}

	buf := &SafeBuffer{}
	harnessApp := app.NewApp(buf, appConfig, suite.NewLoader(), modules...)
	err := harnessApp.Run(context.Background())

	return &HarnessResult{
		Output: buf.String(),
		Err:    err,
		App:    harnessApp,
		Dir:    tmpDir,
	}
}

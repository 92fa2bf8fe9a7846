package suite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/profile"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const basicManifest = `
settings {
  store_path = "results.db"
  report_url = "https://dashboard.example.com/upload"
  workers    = 4
}

run "transformer_smoke" {
  fixture = "configs/transformer/train_infer.txt"
  modes   = ["lite_train_lite_infer"]
  workdir = "work"
  env = {
    FLAGS_call_stack_level = "2"
  }
}

run "transformer_full" {
  fixture = "configs/transformer/train_infer.txt"
  modes   = ["whole_train_whole_infer", "whole_infer"]
  use_gpu = false
}
`

func TestLoad_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "suite.hcl", basicManifest)

	s, err := NewLoader().Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "results.db"), s.StorePath)
	assert.Equal(t, "https://dashboard.example.com/upload", s.ReportURL)
	assert.Equal(t, 4, s.Workers)
	require.Len(t, s.Runs, 2)

	smoke := s.Runs[0]
	assert.Equal(t, "transformer_smoke", smoke.Name)
	assert.Equal(t, filepath.Join(dir, "configs/transformer/train_infer.txt"), smoke.FixturePath)
	assert.Equal(t, filepath.Join(dir, "work"), smoke.Workdir)
	assert.Equal(t, map[string]string{"FLAGS_call_stack_level": "2"}, smoke.Env)
	assert.Equal(t, []profile.Mode{profile.LiteTrainLiteInfer}, smoke.Modes)
	assert.Nil(t, smoke.UseGPU)

	full := s.Runs[1]
	require.NotNil(t, full.UseGPU)
	assert.False(t, *full.UseGPU)
	assert.Equal(t, []profile.Mode{profile.WholeTrainWholeInfer, profile.WholeInfer}, full.Modes)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a/one.hcl", `
run "one" {
  fixture = "one.txt"
  modes   = ["lite_train_lite_infer"]
}
`)
	writeManifest(t, dir, "b/two.hcl", `
run "two" {
  fixture = "two.txt"
  modes   = ["whole_infer"]
}
`)

	s, err := NewLoader().Load(testContext(t), dir)
	require.NoError(t, err)
	assert.Len(t, s.Runs, 2)
	assert.Equal(t, defaultWorkers, s.Workers)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "suite.hcl", `
run "only" {
  fixture = "f.txt"
  modes   = ["lite_train_lite_infer"]
}
`)

	s, err := NewLoader().Load(testContext(t), path)
	require.NoError(t, err)
	// The default store path is anchored to the manifest directory, the same
	// as an explicit store_path would be.
	assert.Equal(t, filepath.Join(dir, defaultStorePath), s.StorePath)
	assert.Equal(t, defaultWorkers, s.Workers)
	assert.Equal(t, "", s.ReportURL)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown mode": `
run "r" {
  fixture = "f.txt"
  modes   = ["sideways_train"]
}
`,
		"missing fixture": `
run "r" {
  modes = ["whole_infer"]
  fixture = ""
}
`,
		"no modes": `
run "r" {
  fixture = "f.txt"
  modes   = []
}
`,
		"duplicate run names": `
run "r" {
  fixture = "f.txt"
  modes   = ["whole_infer"]
}
run "r" {
  fixture = "g.txt"
  modes   = ["whole_infer"]
}
`,
		"no runs at all": `
settings {
  workers = 2
}
`,
		"malformed hcl": `run "r" {`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeManifest(t, dir, "suite.hcl", content)
			_, err := NewLoader().Load(testContext(t), path)
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := NewLoader().Load(testContext(t), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoad_DuplicateSettings(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.hcl", `
settings { workers = 2 }
run "a" {
  fixture = "f.txt"
  modes   = ["whole_infer"]
}
`)
	writeManifest(t, dir, "b.hcl", `
settings { workers = 3 }
run "b" {
  fixture = "g.txt"
  modes   = ["whole_infer"]
}
`)

	_, err := NewLoader().Load(testContext(t), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate settings")
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_InvalidFlag(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-log-format", "yaml", "suite.hcl"})
	require.Error(t, err)
}

func TestRun_ValidateSuite(t *testing.T) {
	dir := t.TempDir()

	fixture := `model_name:m
python:python3
epoch:lite_train_lite_infer=1
trainer:norm_train
norm_train:echo train
##
inference:echo infer
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train_infer.txt"), []byte(fixture), 0644))

	manifest := `
run "m" {
  fixture = "train_infer.txt"
  modes   = ["lite_train_lite_infer"]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "suite.hcl"), []byte(manifest), 0644))

	var out bytes.Buffer
	err := run(&out, []string{"-validate", "-log-level", "error", filepath.Join(dir, "suite.hcl")})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "OK m (lite_train_lite_infer)")
}

func TestRun_MissingSuite(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-log-level", "error", filepath.Join(t.TempDir(), "absent.hcl")})
	require.Error(t, err)
}

// Package shell executes single command lines for pipeline steps. Commands
// run through `sh -c` so the templates in fixtures keep their shell
// semantics (redirections, quoting) without the harness re-implementing them.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/vk/traingrid/internal/ctxlog"
)

// Result captures the outcome of one command execution.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Ok reports whether the command exited successfully.
func (r *Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner executes commands in a fixed working directory with an environment
// overlay on top of the host environment. Pipeline steps need the full host
// environment (interpreter paths, CUDA variables), so unlike a hermetic
// build tool the overlay extends rather than replaces it.
type Runner struct {
	Workdir string
	Env     map[string]string
}

// Run executes command and captures its output. A non-zero exit code is not
// an error: the Result carries it and the caller decides. An error is
// returned only when the command could not be run at all or the context was
// canceled.
func (r *Runner) Run(ctx context.Context, command string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running command.", "command", command, "workdir", r.Workdir)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.Workdir
	cmd.Env = os.Environ()
	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("command canceled: %w", ctx.Err())
		}
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to run command: %w", err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	logger.Debug("Command finished.", "exit_code", result.ExitCode, "duration", result.Duration)
	return result, nil
}

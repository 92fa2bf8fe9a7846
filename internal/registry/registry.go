// Package registry provides the central glue between step kinds and the
// compiled Go handlers that execute them.
//
// During application startup the registry is populated by the step modules
// and then validated, so a graph can never reach the executor with a step
// kind nothing knows how to run.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Step is one unit of work for a pipeline run: a pipeline phase plus the
// command and environment it executes with.
type Step struct {
	// Kind names the pipeline phase: "patch", "train", "export" or "infer".
	Kind    string
	Command string
	Workdir string
	Env     map[string]string
}

// Result is the recorded outcome of one executed step.
type Result struct {
	ExitCode int
	Duration time.Duration
	LogTail  string
}

// Ok reports whether the step succeeded.
func (r *Result) Ok() bool {
	return r.ExitCode == 0
}

// Handler executes one step. A non-nil error means the step could not run at
// all; a failing command is reported through the Result's exit code.
type Handler func(ctx context.Context, step *Step) (*Result, error)

// RegisteredStep holds the compiled Go parts of a step handler.
type RegisteredStep struct {
	Description string
	Fn          Handler
}

// Module is the interface all step modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered step handlers for one application instance.
type Registry struct {
	HandlerRegistry map[string]*RegisteredStep
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{HandlerRegistry: make(map[string]*RegisteredStep)}
}

// RegisterStep registers a handler for a step kind. Registering the same
// kind twice is a programmer error.
func (r *Registry) RegisterStep(kind string, handler *RegisteredStep) {
	if _, exists := r.HandlerRegistry[kind]; exists {
		panic(fmt.Sprintf("step handler for kind '%s' already registered", kind))
	}
	r.HandlerRegistry[kind] = handler
}

// Handler returns the registered handler for a step kind.
func (r *Registry) Handler(kind string) (*RegisteredStep, bool) {
	h, ok := r.HandlerRegistry[kind]
	return h, ok
}

// Validate checks that every required step kind has a handler.
func (r *Registry) Validate(kinds []string) error {
	var missing []string
	for _, kind := range kinds {
		if _, ok := r.HandlerRegistry[kind]; !ok {
			missing = append(missing, kind)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no handler registered for step kinds: %s", strings.Join(missing, ", "))
	}
	return nil
}

// tailLimit bounds how much captured output a step result keeps.
const tailLimit = 4096

// Tail returns the last tailLimit bytes of the combined output streams,
// which is what ends up in the results store for failed steps.
func Tail(stdout, stderr []byte) string {
	combined := string(stdout)
	if len(stderr) > 0 {
		if combined != "" && !strings.HasSuffix(combined, "\n") {
			combined += "\n"
		}
		combined += string(stderr)
	}
	if len(combined) > tailLimit {
		combined = combined[len(combined)-tailLimit:]
	}
	return combined
}

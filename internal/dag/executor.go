package dag

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/registry"
)

// Executor runs a graph with a bounded pool of concurrent workers.
type Executor struct {
	Graph      *Graph
	numWorkers int
	registry   *registry.Registry
	wg         sync.WaitGroup
}

// NewExecutor creates an executor for the given graph.
func NewExecutor(graph *Graph, workers int, reg *registry.Registry) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{Graph: graph, numWorkers: workers, registry: reg}
}

// Run executes the entire graph concurrently. A failing node marks its
// downstream chain as skipped but leaves unrelated chains running; only
// context cancellation stops the whole run. The returned error aggregates
// the root-cause failures.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *Node, len(e.Graph.Nodes))

	roots := e.Graph.Roots()
	logger.Debug("Initializing executor.", "nodes", len(e.Graph.Nodes), "roots", len(roots))
	for _, node := range roots {
		readyChan <- node
	}

	e.wg.Add(len(e.Graph.Nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(ctx, readyChan, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("All nodes completed.")

	var failedNodes []string
	var rootCause error
	for _, node := range e.Graph.order {
		if NodeState(node.State.Load()) != Failed {
			continue
		}
		if node.Error != nil && !strings.HasPrefix(node.Error.Error(), "skipped") {
			failedNodes = append(failedNodes, node.ID)
			if rootCause == nil {
				rootCause = node.Error
			}
		}
	}
	if rootCause != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCause)
	}
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *Node, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", node.ID)

		if ctx.Err() != nil {
			node.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping node execution.")
				node.State.Store(int32(Failed))
				node.Error = ctx.Err()
				e.wg.Done()
				e.skipDependents(ctx, node)
			})
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		node.State.Store(int32(Running))

		err := e.executeNode(ctx, node)
		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			node.State.Store(int32(Failed))
			node.Error = err
			e.skipDependents(ctx, node)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		node.State.Store(int32(Done))

		for _, dependent := range node.Dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// executeNode dispatches a node to its registered handler. A handler error
// and a non-zero exit code are both node failures; the result is kept either
// way so the store sees the exit code and log tail.
func (e *Executor) executeNode(ctx context.Context, node *Node) error {
	handler, ok := e.registry.Handler(node.Step.Kind)
	if !ok {
		return fmt.Errorf("no handler for step kind %q", node.Step.Kind)
	}

	result, err := handler.Fn(ctx, node.Step)
	node.Result = result
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("step %q exited with code %d", node.ID, result.ExitCode)
	}
	return nil
}

// skipDependents recursively marks all downstream nodes as failed and
// releases their WaitGroup slots.
func (e *Executor) skipDependents(ctx context.Context, node *Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range node.Dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping dependent node due to upstream failure.", "nodeID", dependent.ID, "dependency", node.ID)
			dependent.State.Store(int32(Failed))
			dependent.Error = fmt.Errorf("skipped due to upstream failure of '%s'", node.ID)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		})
	}
}

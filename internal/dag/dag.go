package dag

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/traingrid/internal/registry"
)

// NodeState tracks the lifecycle of a node through execution.
type NodeState int32

const (
	Pending NodeState = iota
	Running
	Done
	Failed
)

// Node is one schedulable step in the graph.
type Node struct {
	ID   string
	Step *registry.Step

	Deps       []*Node
	Dependents []*Node

	// Result and Error are written by the worker that executes the node and
	// read only after the run completes.
	Result *registry.Result
	Error  error

	State    atomic.Int32
	depCount atomic.Int32
	skipOnce sync.Once
}

// Graph is a set of nodes wired by dependencies.
type Graph struct {
	Nodes map[string]*Node
	order []*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode adds a step under a unique ID, depending on previously added
// nodes. Unknown dependency IDs are an error so that graph construction
// bugs surface before execution.
func (g *Graph) AddNode(id string, step *registry.Step, deps ...string) (*Node, error) {
	if _, exists := g.Nodes[id]; exists {
		return nil, fmt.Errorf("duplicate node ID %q", id)
	}
	node := &Node{ID: id, Step: step}
	for _, depID := range deps {
		dep, ok := g.Nodes[depID]
		if !ok {
			return nil, fmt.Errorf("node %q depends on unknown node %q", id, depID)
		}
		node.Deps = append(node.Deps, dep)
		dep.Dependents = append(dep.Dependents, node)
	}
	node.depCount.Store(int32(len(node.Deps)))
	g.Nodes[id] = node
	g.order = append(g.order, node)
	return node, nil
}

// Roots returns the nodes with no dependencies, in insertion order.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, node := range g.order {
		if len(node.Deps) == 0 {
			roots = append(roots, node)
		}
	}
	return roots
}

// StepKinds returns the distinct step kinds present in the graph, used to
// validate the registry before execution.
func (g *Graph) StepKinds() []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, node := range g.order {
		if !seen[node.Step.Kind] {
			seen[node.Step.Kind] = true
			kinds = append(kinds, node.Step.Kind)
		}
	}
	return kinds
}

// Package depgraph provides the directed dependency graph used to order
// auxiliary variable evaluation. Graphs are built once, single-threaded,
// from the references extracted out of parsed formulas, then only read.
package depgraph

import "fmt"

// Graph is a directed graph keyed by node ID. Insertion order is retained so
// that topological ordering is deterministic for a given model.
type Graph struct {
	nodes map[string]*node
	order []string
}

type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node,
// meaning `toID` depends on `fromID`. An error is returned if either node
// does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns the IDs of the nodes the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, 0, len(n.deps))
	for depID := range n.deps {
		deps = append(deps, depID)
	}
	return deps, nil
}

// TopologicalOrder returns every node ID ordered so that each node appears
// after all of its dependencies. Among nodes with no ordering constraint
// between them, insertion order wins, keeping the result stable. An error is
// returned when the graph contains a cycle, naming one node involved in it.
func (g *Graph) TopologicalOrder() ([]string, error) {
	placed := make(map[string]bool, len(g.nodes))
	order := make([]string, 0, len(g.nodes))

	for len(order) < len(g.nodes) {
		progressed := false
		for _, id := range g.order {
			if placed[id] {
				continue
			}
			ready := true
			for depID := range g.nodes[id].deps {
				if !placed[depID] {
					ready = false
					break
				}
			}
			if ready {
				placed[id] = true
				order = append(order, id)
				progressed = true
			}
		}
		if !progressed {
			for _, id := range g.order {
				if !placed[id] {
					return nil, fmt.Errorf("cycle detected involving node '%s'", id)
				}
			}
		}
	}

	return order, nil
}

// DetectCycles checks the graph for any cycles, returning a non-nil error
// naming a node in the first cycle found.
func (g *Graph) DetectCycles() error {
	_, err := g.TopologicalOrder()
	return err
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

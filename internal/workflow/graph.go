// Package workflow runs a fixed directed acyclic graph of named stages over
// one typed state record. Each stage returns a partial update that the engine
// checks against the fields the stage owns and merges before the next stage
// starts. The first failing stage halts the run; nothing is rolled back.
package workflow

import (
	"context"
	"fmt"
)

// Update is a partial state change produced by one stage
type Update[S any] interface {
	// Fields names the state fields the update sets
	Fields() []string
	// Apply merges the update into the state
	Apply(*S)
}

// NodeFunc is a stage. It receives a copy of the current state.
type NodeFunc[S any, U Update[S]] func(ctx context.Context, state S) (U, error)

type node[S any, U Update[S]] struct {
	name string
	fn   NodeFunc[S, U]
	owns map[string]struct{}
}

type edge struct {
	from, to string
}

// Graph collects nodes and edges before compiling them into an Engine
type Graph[S any, U Update[S]] struct {
	name  string
	nodes []node[S, U]
	index map[string]int
	edges []edge
}

// NewGraph creates an empty graph. The name labels logs and metrics.
func NewGraph[S any, U Update[S]](name string) *Graph[S, U] {
	return &Graph[S, U]{
		name:  name,
		index: make(map[string]int),
	}
}

// AddNode declares a stage and the state fields it may set.
// Declaration order breaks ties between stages that are ready at the same time.
func (g *Graph[S, U]) AddNode(name string, fn NodeFunc[S, U], owns ...string) error {
	if name == "" {
		return &GraphError{Message: "node name is required"}
	}
	if fn == nil {
		return &GraphError{Message: fmt.Sprintf("node %s has no function", name)}
	}
	if _, exists := g.index[name]; exists {
		return &GraphError{Message: fmt.Sprintf("duplicate node %s", name)}
	}

	set := make(map[string]struct{}, len(owns))
	for _, f := range owns {
		set[f] = struct{}{}
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, node[S, U]{name: name, fn: fn, owns: set})
	return nil
}

// AddEdge declares that from must complete before to starts
func (g *Graph[S, U]) AddEdge(from, to string) error {
	for _, e := range g.edges {
		if e.from == from && e.to == to {
			return &GraphError{Message: fmt.Sprintf("duplicate edge %s -> %s", from, to)}
		}
	}
	g.edges = append(g.edges, edge{from: from, to: to})
	return nil
}

// Compile orders the nodes and returns an engine that runs them.
func (g *Graph[S, U]) Compile(opts ...Option) (*Engine[S, U], error) {
	if len(g.nodes) == 0 {
		return nil, &GraphError{Message: fmt.Sprintf("graph %s has no nodes", g.name)}
	}
	for _, e := range g.edges {
		if _, ok := g.index[e.from]; !ok {
			return nil, &GraphError{Message: fmt.Sprintf("edge references unknown node %s", e.from)}
		}
		if _, ok := g.index[e.to]; !ok {
			return nil, &GraphError{Message: fmt.Sprintf("edge references unknown node %s", e.to)}
		}
	}

	order, err := g.topoOrder()
	if err != nil {
		return nil, err
	}

	e := &Engine[S, U]{
		name:  g.name,
		order: order,
		nodes: append([]node[S, U](nil), g.nodes...),
		index: make(map[string]int, len(order)),
	}
	for i, n := range order {
		e.index[e.nodes[n].name] = i
	}
	for _, opt := range opts {
		opt(&e.options)
	}
	e.options.defaults()
	return e, nil
}

// topoOrder is Kahn's algorithm; among ready nodes the earliest declared runs first.
func (g *Graph[S, U]) topoOrder() ([]int, error) {
	indegree := make([]int, len(g.nodes))
	successors := make([][]int, len(g.nodes))
	for _, e := range g.edges {
		from, to := g.index[e.from], g.index[e.to]
		successors[from] = append(successors[from], to)
		indegree[to]++
	}

	done := make([]bool, len(g.nodes))
	order := make([]int, 0, len(g.nodes))
	for len(order) < len(g.nodes) {
		next := -1
		for i := range g.nodes {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &GraphError{Message: fmt.Sprintf("cannot order graph %s", g.name), Cause: ErrCycle}
		}
		done[next] = true
		order = append(order, next)
		for _, s := range successors[next] {
			indegree[s]--
		}
	}
	return order, nil
}

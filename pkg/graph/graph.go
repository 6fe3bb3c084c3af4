package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeName is returned by [Builder.AddNode] when the name is empty.
	ErrInvalidNodeName = errors.New("node name must not be empty")

	// ErrDuplicateNodeName is returned by [Builder.AddNode] when a node with the
	// same name was already added.
	ErrDuplicateNodeName = errors.New("duplicate node name")

	// ErrUnknownNode is returned by [Builder.AddEdge] and [Builder.MarkSource] /
	// [Builder.MarkTarget] when a name does not refer to an added node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoSource is returned by [Graph.Source] and [Builder.Build] when no node
	// carries the source flag.
	ErrNoSource = errors.New("no node is flagged as source")

	// ErrNoTarget is returned by [Graph.Target] and [Builder.Build] when no node
	// carries the target flag.
	ErrNoTarget = errors.New("no node is flagged as target")

	// ErrMultipleSources is returned by [Builder.Build] when more than one node
	// carries the source flag.
	ErrMultipleSources = errors.New("more than one node is flagged as source")

	// ErrMultipleTargets is returned by [Builder.Build] when more than one node
	// carries the target flag.
	ErrMultipleTargets = errors.New("more than one node is flagged as target")
)

// Graph is an immutable directed graph whose nodes are indexed 0..Order()-1.
// Exactly one node is flagged as source and exactly one as target; the same
// node may carry both flags.
//
// The zero value is an empty graph without source or target. Use [Builder]
// to construct a usable Graph. A Graph is safe for concurrent reads.
type Graph struct {
	name   string
	names  []string
	index  map[string]int
	succ   [][]int // ascending node ids
	adj    []map[int]struct{}
	source int
	target int
	edges  int
}

// Name returns the graph's name (usually the file it was read from).
func (g *Graph) Name() string { return g.name }

// Order returns the number of nodes.
func (g *Graph) Order() int { return len(g.names) }

// EdgeCount returns the number of distinct directed edges.
func (g *Graph) EdgeCount() int { return g.edges }

// NodeName returns the display name of node u.
func (g *Graph) NodeName(u int) string { return g.names[u] }

// NodeNames returns a copy of all node names in index order.
func (g *Graph) NodeNames() []string { return slices.Clone(g.names) }

// Lookup returns the index of the node with the given name.
func (g *Graph) Lookup(name string) (int, bool) {
	u, ok := g.index[name]
	return u, ok
}

// IsEdge reports whether the edge u→v exists.
func (g *Graph) IsEdge(u, v int) bool {
	if u < 0 || u >= len(g.adj) {
		return false
	}
	_, ok := g.adj[u][v]
	return ok
}

// Successors returns the direct successors of u in ascending index order.
// The returned slice must not be modified.
func (g *Graph) Successors(u int) []int { return g.succ[u] }

// IsSource reports whether u is the source node.
func (g *Graph) IsSource(u int) bool { return g.Order() > 0 && u == g.source }

// IsTarget reports whether u is the target node.
func (g *Graph) IsTarget(u int) bool { return g.Order() > 0 && u == g.target }

// Source returns the source node, or ErrNoSource for a graph without one.
func (g *Graph) Source() (int, error) {
	if g.Order() == 0 || g.source < 0 {
		return 0, ErrNoSource
	}
	return g.source, nil
}

// Target returns the target node, or ErrNoTarget for a graph without one.
func (g *Graph) Target() (int, error) {
	if g.Order() == 0 || g.target < 0 {
		return 0, ErrNoTarget
	}
	return g.target, nil
}

// String renders the graph in a compact, human readable form:
//
//	g1: 3 nodes, 2 edges, source a, target c
//	  a -> b
//	  b -> c
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d nodes, %d edges", g.name, g.Order(), g.edges)
	if s, err := g.Source(); err == nil {
		fmt.Fprintf(&b, ", source %s", g.names[s])
	}
	if t, err := g.Target(); err == nil {
		fmt.Fprintf(&b, ", target %s", g.names[t])
	}
	for u := range g.names {
		for _, v := range g.succ[u] {
			fmt.Fprintf(&b, "\n  %s -> %s", g.names[u], g.names[v])
		}
	}
	return b.String()
}

// MinOrder returns the smallest order among graphs, or 0 for an empty slice.
func MinOrder(graphs []*Graph) int {
	if len(graphs) == 0 {
		return 0
	}
	m := graphs[0].Order()
	for _, g := range graphs[1:] {
		m = min(m, g.Order())
	}
	return m
}

// Builder accumulates nodes and edges and produces an immutable [Graph].
// The zero value is not usable; create one with [NewBuilder].
type Builder struct {
	name    string
	names   []string
	index   map[string]int
	edges   [][2]int
	sources []int
	targets []int
}

// NewBuilder returns an empty builder for a graph with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, index: make(map[string]int)}
}

// AddNode adds a node and returns its index. Indices are assigned in
// insertion order starting at 0.
func (b *Builder) AddNode(name string) (int, error) {
	if name == "" {
		return 0, ErrInvalidNodeName
	}
	if _, exists := b.index[name]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateNodeName, name)
	}
	u := len(b.names)
	b.names = append(b.names, name)
	b.index[name] = u
	return u, nil
}

// EnsureNode returns the index of name, adding the node if needed.
func (b *Builder) EnsureNode(name string) (int, error) {
	if u, ok := b.index[name]; ok {
		return u, nil
	}
	return b.AddNode(name)
}

// AddEdge adds the directed edge from→to between existing nodes.
// Parallel edges collapse into one.
func (b *Builder) AddEdge(from, to string) error {
	u, ok := b.index[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	v, ok := b.index[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	b.edges = append(b.edges, [2]int{u, v})
	return nil
}

// MarkSource flags the named node as the source.
func (b *Builder) MarkSource(name string) error {
	u, ok := b.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	if !slices.Contains(b.sources, u) {
		b.sources = append(b.sources, u)
	}
	return nil
}

// MarkTarget flags the named node as the target.
func (b *Builder) MarkTarget(name string) error {
	u, ok := b.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	if !slices.Contains(b.targets, u) {
		b.targets = append(b.targets, u)
	}
	return nil
}

// Build validates the flags and returns the graph. It fails with
// ErrNoSource, ErrNoTarget, ErrMultipleSources or ErrMultipleTargets
// when the graph does not have exactly one source and one target.
func (b *Builder) Build() (*Graph, error) {
	switch {
	case len(b.sources) == 0:
		return nil, ErrNoSource
	case len(b.sources) > 1:
		return nil, fmt.Errorf("%w: %s", ErrMultipleSources, b.joinNames(b.sources))
	case len(b.targets) == 0:
		return nil, ErrNoTarget
	case len(b.targets) > 1:
		return nil, fmt.Errorf("%w: %s", ErrMultipleTargets, b.joinNames(b.targets))
	}

	n := len(b.names)
	g := &Graph{
		name:   b.name,
		names:  slices.Clone(b.names),
		index:  make(map[string]int, n),
		succ:   make([][]int, n),
		adj:    make([]map[int]struct{}, n),
		source: b.sources[0],
		target: b.targets[0],
	}
	for u, name := range g.names {
		g.index[name] = u
		g.adj[u] = make(map[int]struct{})
	}
	for _, e := range b.edges {
		if _, dup := g.adj[e[0]][e[1]]; dup {
			continue
		}
		g.adj[e[0]][e[1]] = struct{}{}
		g.succ[e[0]] = append(g.succ[e[0]], e[1])
		g.edges++
	}
	for u := range g.succ {
		slices.Sort(g.succ[u])
	}
	return g, nil
}

func (b *Builder) joinNames(ids []int) string {
	names := make([]string, len(ids))
	for i, u := range ids {
		names[i] = b.names[u]
	}
	return strings.Join(names, ", ")
}

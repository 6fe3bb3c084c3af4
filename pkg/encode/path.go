package encode

import (
	"fmt"
	"strings"

	"github.com/matzehuels/equalpath/pkg/graph"
)

// Path is a sequence of node ids, one per position.
type Path []int

// Len returns the number of edges of p.
func (p Path) Len() int { return len(p) - 1 }

// Names returns the node names of p in g.
func (p Path) Names(g *graph.Graph) []string {
	names := make([]string, len(p))
	for i, u := range p {
		names[i] = g.NodeName(u)
	}
	return names
}

// Format renders p as "a-->b-->c".
func (p Path) Format(g *graph.Graph) string {
	return strings.Join(p.Names(g), "-->")
}

// Validate checks that p is a simple path from the source of g to its target
// following edges of g.
func (p Path) Validate(g *graph.Graph) error {
	if len(p) == 0 {
		return fmt.Errorf("empty path")
	}
	seen := make(map[int]bool, len(p))
	for i, u := range p {
		if u < 0 || u >= g.Order() {
			return fmt.Errorf("node %d at position %d out of range", u, i)
		}
		if seen[u] {
			return fmt.Errorf("node %s repeated at position %d", g.NodeName(u), i)
		}
		seen[u] = true
		if i > 0 && !g.IsEdge(p[i-1], u) {
			return fmt.Errorf("no edge %s -> %s", g.NodeName(p[i-1]), g.NodeName(u))
		}
	}
	if !g.IsSource(p[0]) {
		return fmt.Errorf("path starts at %s, not the source", g.NodeName(p[0]))
	}
	if last := p[len(p)-1]; !g.IsTarget(last) {
		return fmt.Errorf("path ends at %s, not the target", g.NodeName(last))
	}
	return nil
}

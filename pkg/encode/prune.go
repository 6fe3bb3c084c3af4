package encode

import (
	"slices"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
)

// Candidates lists, for each position 0..k, the nodes that may occupy it.
// Nodes appear in discovery order.
type Candidates [][]int

// At returns the candidates at position p, or nil when p is out of range.
func (c Candidates) At(p int) []int {
	if p < 0 || p >= len(c) {
		return nil
	}
	return c[p]
}

// Contains reports whether n is a candidate at position p.
func (c Candidates) Contains(p, n int) bool {
	return slices.Contains(c.At(p), n)
}

// Size returns the total number of (position, node) pairs.
func (c Candidates) Size() int {
	total := 0
	for _, ns := range c {
		total += len(ns)
	}
	return total
}

// Sorted returns a copy of the candidates at position p in ascending order.
func (c Candidates) Sorted(p int) []int {
	out := slices.Clone(c.At(p))
	slices.Sort(out)
	return out
}

type visit struct {
	node, dist int
}

// Prune returns the nodes reachable from the source of g by a walk of exactly
// p edges, for every p in 0..maxLength.
//
// The search is breadth first over (node, distance) pairs. A node is expanded
// only the first time it is recorded at a distance, and self loops are never
// followed since a simple path cannot use them.
func Prune(g *graph.Graph, maxLength int) (Candidates, error) {
	if maxLength < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "path length must be non-negative, got %d", maxLength)
	}
	src, err := g.Source()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNoSource, err, "graph %s", g.Name())
	}

	cands := make(Candidates, maxLength+1)
	seen := make([][]bool, maxLength+1)
	queue := []visit{{src, 0}}
	for head := 0; head < len(queue); head++ {
		v := queue[head]
		if v.dist > maxLength {
			break
		}
		if seen[v.dist] == nil {
			seen[v.dist] = make([]bool, g.Order())
		}
		if seen[v.dist][v.node] {
			continue
		}
		seen[v.dist][v.node] = true
		cands[v.dist] = append(cands[v.dist], v.node)
		for _, m := range g.Successors(v.node) {
			if m != v.node {
				queue = append(queue, visit{m, v.dist + 1})
			}
		}
	}
	return cands, nil
}

// AllNodes returns every node of g as a candidate at every position
// 0..maxLength.
func AllNodes(g *graph.Graph, maxLength int) Candidates {
	if maxLength < 0 {
		return nil
	}
	all := make([]int, g.Order())
	for u := range all {
		all[u] = u
	}
	cands := make(Candidates, maxLength+1)
	for p := range cands {
		cands[p] = slices.Clone(all)
	}
	return cands
}

package encode

import (
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
	"github.com/matzehuels/equalpath/pkg/sat"
)

// DecodePaths reads one length-k path per graph from model. For each
// position the candidates are scanned in ascending id order and the first
// true variable wins. Only candidates are scanned: a pruned formula leaves
// the other variables unconstrained.
//
// A position without a true candidate, or a decoded sequence that is not a
// valid simple path, yields an INCONSISTENT_MODEL error.
func DecodePaths(model *sat.Model[VarKey], graphs []*graph.Graph, k int) ([]Path, error) {
	if err := errs.ValidateLength(k); err != nil {
		return nil, err
	}
	paths := make([]Path, len(graphs))
	for i, g := range graphs {
		cands, err := Prune(g, k)
		if err != nil {
			return nil, err
		}
		path := make(Path, 0, k+1)
		for p := 0; p <= k; p++ {
			node := -1
			for _, n := range cands.Sorted(p) {
				if model.Value(VarKey{Graph: i, Position: p, Length: k, Node: n}) {
					node = n
					break
				}
			}
			if node < 0 {
				return nil, errs.New(errs.ErrCodeInconsistentModel,
					"graph %s: no node at position %d of a length %d path", g.Name(), p, k)
			}
			path = append(path, node)
		}
		if err := path.Validate(g); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInconsistentModel, err, "graph %s", g.Name())
		}
		paths[i] = path
	}
	return paths, nil
}

// RecoverLength finds the path length a model was produced for, without
// knowing it in advance. For each hypothesised length L it walks the first
// graph from the source, always following the lowest-id successor whose
// variable is true at the next position. L is accepted when the walk ends at
// the target at position L with both endpoint variables true and every graph
// decodes into a valid length-L path.
func RecoverLength(model *sat.Model[VarKey], graphs []*graph.Graph) (int, error) {
	if len(graphs) == 0 {
		return -1, errs.New(errs.ErrCodeInvalidInput, "no graphs given")
	}
	g := graphs[0]
	src, err := g.Source()
	if err != nil {
		return -1, errs.Wrap(errs.ErrCodeNoSource, err, "graph %s", g.Name())
	}
	tgt, err := g.Target()
	if err != nil {
		return -1, errs.Wrap(errs.ErrCodeNoTarget, err, "graph %s", g.Name())
	}

	x := func(p, l, n int) bool {
		return model.Value(VarKey{Graph: 0, Position: p, Length: l, Node: n})
	}
	for l := 0; l < g.Order(); l++ {
		if !x(0, l, src) || !x(l, l, tgt) {
			continue
		}
		cands, err := Prune(g, l)
		if err != nil {
			return -1, err
		}
		if walk(g, cands, src, l, x) != tgt {
			continue
		}
		if _, err := DecodePaths(model, graphs, l); err != nil {
			continue
		}
		return l, nil
	}
	return -1, errs.New(errs.ErrCodeInconsistentModel, "model does not encode a path of any length")
}

// walk follows true successor variables from src for l steps and returns
// the node reached, or -1 if the walk gets stuck.
func walk(g *graph.Graph, cands Candidates, src, l int, x func(p, l, n int) bool) int {
	cur := src
	for p := 0; p < l; p++ {
		next := -1
		for _, m := range g.Successors(cur) {
			if cands.Contains(p+1, m) && x(p+1, l, m) {
				next = m
				break
			}
		}
		if next < 0 {
			return -1
		}
		cur = next
	}
	return cur
}

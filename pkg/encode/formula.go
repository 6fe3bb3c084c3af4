package encode

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
	"github.com/matzehuels/equalpath/pkg/sat"
)

// Encoder builds path formulas on a sat.Engine. It is not safe for
// concurrent use.
type Encoder struct {
	engine  *sat.Engine[VarKey]
	noPrune bool
	logger  *log.Logger
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithPruning enables or disables reachability pruning. Pruning is on by
// default.
func WithPruning(enabled bool) Option {
	return func(e *Encoder) { e.noPrune = !enabled }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Encoder) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEncoder returns an encoder that builds formulas on engine. A nil engine
// is replaced by a fresh one.
func NewEncoder(engine *sat.Engine[VarKey], opts ...Option) *Encoder {
	if engine == nil {
		engine = sat.New[VarKey]()
	}
	e := &Encoder{engine: engine, logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the engine formulas are built on.
func (e *Encoder) Engine() *sat.Engine[VarKey] { return e.engine }

// Pruning reports whether reachability pruning is enabled.
func (e *Encoder) Pruning() bool { return !e.noPrune }

// Candidates returns the candidate table used for a length-k formula over g.
func (e *Encoder) Candidates(g *graph.Graph, k int) (Candidates, error) {
	if e.noPrune {
		if k < 0 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "path length must be non-negative, got %d", k)
		}
		return AllNodes(g, k), nil
	}
	return Prune(g, k)
}

// GraphFormula returns the formula "g has a simple path of k edges from its
// source to its target", with variables keyed by index.
func (e *Encoder) GraphFormula(g *graph.Graph, index, k int) (sat.Formula, error) {
	src, err := g.Source()
	if err != nil {
		return sat.Formula{}, errs.Wrap(errs.ErrCodeNoSource, err, "graph %s", g.Name())
	}
	tgt, err := g.Target()
	if err != nil {
		return sat.Formula{}, errs.Wrap(errs.ErrCodeNoTarget, err, "graph %s", g.Name())
	}
	cands, err := e.Candidates(g, k)
	if err != nil {
		return sat.Formula{}, err
	}

	b := &builder{engine: e.engine, g: g, index: index, k: k}
	parts := []sat.Formula{b.validity(src, tgt)}
	for p := 0; p <= k; p++ {
		parts = append(parts, b.exclusivity(p, cands.At(p)))
	}
	for p := 0; p < k; p++ {
		for _, n := range cands.At(p) {
			parts = append(parts, b.adjacency(p, n))
		}
	}

	e.logger.Debug("built graph formula",
		"graph", g.Name(),
		"length", k,
		"candidates", cands.Size(),
		"vars", e.engine.NumVars())
	return e.engine.And(parts...), nil
}

// PathFormula returns the conjunction of GraphFormula over graphs for
// length k. Graph i uses index i.
func (e *Encoder) PathFormula(graphs []*graph.Graph, k int) (sat.Formula, error) {
	if len(graphs) == 0 {
		return sat.Formula{}, errs.New(errs.ErrCodeInvalidInput, "no graphs given")
	}
	if err := errs.ValidateLength(k); err != nil {
		return sat.Formula{}, err
	}
	parts := make([]sat.Formula, len(graphs))
	for i, g := range graphs {
		f, err := e.GraphFormula(g, i, k)
		if err != nil {
			return sat.Formula{}, err
		}
		parts[i] = f
	}
	return e.engine.And(parts...), nil
}

// Existence is the outcome of ExistenceFormula.
type Existence struct {
	// Formula is the disjunction of the path formulas of every length tried.
	Formula sat.Formula
	// Verdict is Sat if some length was satisfiable, Unknown if no length was
	// satisfiable but some check was inconclusive, and Unsat otherwise.
	Verdict sat.Verdict
	// Length is the satisfiable length, or -1.
	Length int
	// Model satisfies the path formula of Length. Nil unless Verdict is Sat.
	Model *sat.Model[VarKey]
	// Tried is the number of lengths whose formula was built and checked.
	Tried int
}

// ExistenceFormula builds and checks the path formula for k = 0, 1, ... up to
// the smallest graph order minus one, stopping at the first satisfiable
// length. The returned formula holds every disjunct built so far.
func (e *Encoder) ExistenceFormula(ctx context.Context, graphs []*graph.Graph) (*Existence, error) {
	if len(graphs) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no graphs given")
	}

	res := &Existence{Verdict: sat.Unsat, Length: -1}
	var disjuncts []sat.Formula
	inconclusive := false
	limit := graph.MinOrder(graphs)
	for k := 0; k < limit; k++ {
		f, err := e.PathFormula(graphs, k)
		if err != nil {
			return nil, err
		}
		disjuncts = append(disjuncts, f)
		res.Tried++

		start := time.Now()
		v, m, err := e.engine.Check(ctx, f)
		e.logger.Debug("checked length", "length", k, "verdict", v.String(), "duration", time.Since(start))
		if err != nil {
			res.Formula = e.engine.Or(disjuncts...)
			res.Verdict = sat.Unknown
			return res, err
		}
		if v == sat.Unknown {
			inconclusive = true
		}
		if v == sat.Sat {
			res.Verdict, res.Length, res.Model = sat.Sat, k, m
			break
		}
	}
	if res.Verdict != sat.Sat && inconclusive {
		res.Verdict = sat.Unknown
	}
	res.Formula = e.engine.Or(disjuncts...)
	return res, nil
}

// builder emits the three constraint families for one graph and length.
type builder struct {
	engine *sat.Engine[VarKey]
	g      *graph.Graph
	index  int
	k      int
}

func (b *builder) x(p, n int) sat.Formula {
	return b.engine.Var(VarKey{Graph: b.index, Position: p, Length: b.k, Node: n})
}

// validity: the source starts the path and the target alone ends it.
func (b *builder) validity(src, tgt int) sat.Formula {
	parts := []sat.Formula{b.x(0, src), b.x(b.k, tgt)}
	for n := 0; n < b.g.Order(); n++ {
		if n != tgt {
			parts = append(parts, b.engine.Not(b.x(b.k, n)))
		}
	}
	return b.engine.And(parts...)
}

// exclusivity: exactly one candidate holds position p, and it holds no other
// position.
func (b *builder) exclusivity(p int, cands []int) sat.Formula {
	if len(cands) == 0 {
		return b.engine.False()
	}
	disjuncts := make([]sat.Formula, 0, len(cands))
	for _, n := range cands {
		parts := []sat.Formula{b.x(p, n)}
		for _, o := range cands {
			if o != n {
				parts = append(parts, b.engine.Not(b.x(p, o)))
			}
		}
		for q := 0; q <= b.k; q++ {
			if q != p {
				parts = append(parts, b.engine.Not(b.x(q, n)))
			}
		}
		disjuncts = append(disjuncts, b.engine.And(parts...))
	}
	if len(disjuncts) == 1 {
		return disjuncts[0]
	}
	return b.engine.Or(disjuncts...)
}

// adjacency: if n holds position p, one of its successors holds p+1.
func (b *builder) adjacency(p, n int) sat.Formula {
	parts := []sat.Formula{b.engine.Not(b.x(p, n))}
	for _, m := range b.g.Successors(n) {
		parts = append(parts, b.x(p+1, m))
	}
	return b.engine.Or(parts...)
}

package sat

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// A cancellable Check looks for a solver result right away, then waits
// between looks starting at minPoll and doubling up to maxPoll.
const (
	minPoll = 50 * time.Microsecond
	maxPoll = time.Millisecond
)

// Verdict is the outcome of a satisfiability check.
type Verdict int

const (
	// Unknown means the solver gave no answer, e.g. because the context was
	// cancelled.
	Unknown Verdict = iota
	// Sat means the formula has a model.
	Sat
	// Unsat means the formula has no model.
	Unsat
)

func (v Verdict) String() string {
	switch v {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the verdict as its String form.
func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses SAT, UNSAT or UNKNOWN.
func (v *Verdict) UnmarshalText(b []byte) error {
	switch string(b) {
	case "SAT":
		*v = Sat
	case "UNSAT":
		*v = Unsat
	case "UNKNOWN":
		*v = Unknown
	default:
		return fmt.Errorf("unknown verdict %q", b)
	}
	return nil
}

// Formula is a handle to a node of an Engine's circuit. Formulas are only
// meaningful for the Engine that built them.
type Formula struct {
	lit z.Lit
}

// Engine builds formulas over variables identified by keys of type K and
// checks them with gini.
type Engine[K comparable] struct {
	c    *logic.C
	vars map[K]z.Lit
	keys map[z.Var]K

	solver *gini.Gini
	marks  []int8
}

// New returns an empty engine.
func New[K comparable]() *Engine[K] {
	return &Engine[K]{
		c:      logic.NewC(),
		vars:   make(map[K]z.Lit),
		keys:   make(map[z.Var]K),
		solver: gini.New(),
	}
}

// Var returns the variable for key, creating it on first use.
func (e *Engine[K]) Var(key K) Formula {
	if lit, ok := e.vars[key]; ok {
		return Formula{lit}
	}
	lit := e.c.Lit()
	e.vars[key] = lit
	e.keys[lit.Var()] = key
	return Formula{lit}
}

// Lookup returns the variable for key without creating it.
func (e *Engine[K]) Lookup(key K) (Formula, bool) {
	lit, ok := e.vars[key]
	return Formula{lit}, ok
}

// NumVars returns the number of interned variables.
func (e *Engine[K]) NumVars() int { return len(e.vars) }

// Size returns the number of nodes in the underlying circuit.
func (e *Engine[K]) Size() int { return e.c.Len() }

// True returns the constant true formula.
func (e *Engine[K]) True() Formula { return Formula{e.c.T} }

// False returns the constant false formula.
func (e *Engine[K]) False() Formula { return Formula{e.c.F} }

// Not returns the negation of f.
func (e *Engine[K]) Not(f Formula) Formula { return Formula{f.lit.Not()} }

// And returns the conjunction of fs. An empty conjunction is true.
func (e *Engine[K]) And(fs ...Formula) Formula {
	return Formula{e.c.Ands(lits(fs)...)}
}

// Or returns the disjunction of fs. An empty disjunction is false.
func (e *Engine[K]) Or(fs ...Formula) Formula {
	return Formula{e.c.Ors(lits(fs)...)}
}

func lits(fs []Formula) []z.Lit {
	ms := make([]z.Lit, len(fs))
	for i, f := range fs {
		ms[i] = f.lit
	}
	return ms
}

// Check decides whether f is satisfiable. On Sat the returned model holds the
// values of every variable f depends on. If ctx is cancelled before the
// solver answers, Check stops the solver and returns Unknown with ctx.Err().
func (e *Engine[K]) Check(ctx context.Context, f Formula) (Verdict, *Model[K], error) {
	if err := ctx.Err(); err != nil {
		return Unknown, nil, err
	}
	switch f.lit {
	case e.c.F:
		return Unsat, nil, nil
	case e.c.T:
		return Sat, &Model[K]{vals: map[K]bool{}}, nil
	}

	e.marks, _ = e.c.CnfSince(e.solver, e.marks, f.lit)
	e.solver.Assume(f.lit)

	res, err := e.solve(ctx)
	switch {
	case err != nil:
		return Unknown, nil, err
	case res == 1:
		return Sat, e.model(f), nil
	case res == -1:
		return Unsat, nil, nil
	default:
		return Unknown, nil, nil
	}
}

// solve runs the solver in its own goroutine so ctx can stop it. The
// solver's Wait and Stop share a lock, so the result is polled with Test.
func (e *Engine[K]) solve(ctx context.Context) (int, error) {
	if ctx.Done() == nil {
		return e.solver.Solve(), nil
	}
	s := e.solver.GoSolve()
	if res, done := s.Test(); done {
		return res, nil
	}
	delay := minPoll
	timer := time.NewTimer(delay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return 0, ctx.Err()
		case <-timer.C:
			if res, done := s.Test(); done {
				return res, nil
			}
			delay = min(2*delay, maxPoll)
			timer.Reset(delay)
		}
	}
}

// model snapshots the values of the variables in the support of f.
func (e *Engine[K]) model(f Formula) *Model[K] {
	m := &Model[K]{vals: make(map[K]bool)}
	maxVar := e.solver.MaxVar()
	for _, v := range e.support(f) {
		key := e.keys[v]
		m.keys = append(m.keys, key)
		m.vals[key] = v <= maxVar && e.solver.Value(v.Pos())
	}
	return m
}

// support returns the interned variables reachable from f, in creation order.
func (e *Engine[K]) support(f Formula) []z.Var {
	seen := make([]bool, e.c.Len())
	var out []z.Var
	stack := []z.Lit{f.lit}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := m.Var()
		if seen[v] {
			continue
		}
		seen[v] = true
		if _, ok := e.keys[v]; ok {
			out = append(out, v)
			continue
		}
		a, b := e.c.Ins(m)
		if a == z.LitNull || a == e.c.T || a == e.c.F {
			continue
		}
		stack = append(stack, a, b)
	}
	slices.Sort(out)
	return out
}

// Model is a satisfying assignment restricted to the variables of the checked
// formula. Variables outside that set read as false.
type Model[K comparable] struct {
	keys []K
	vals map[K]bool
}

// NewModel returns a model with the given assignment.
func NewModel[K comparable](vals map[K]bool) *Model[K] {
	m := &Model[K]{vals: make(map[K]bool, len(vals))}
	for k, v := range vals {
		m.keys = append(m.keys, k)
		m.vals[k] = v
	}
	return m
}

// Value returns the value of key in the model.
func (m *Model[K]) Value(key K) bool {
	if m == nil {
		return false
	}
	return m.vals[key]
}

// Len returns the number of variables the model assigns.
func (m *Model[K]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// TrueKeys returns the keys assigned true, in variable creation order for
// models produced by Check.
func (m *Model[K]) TrueKeys() []K {
	if m == nil {
		return nil
	}
	var out []K
	for _, k := range m.keys {
		if m.vals[k] {
			out = append(out, k)
		}
	}
	return out
}

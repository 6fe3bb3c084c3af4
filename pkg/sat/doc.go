// Package sat adapts the gini SAT solver to formulas over typed keys.
//
// An [Engine] owns a combinational circuit (an and-inverter graph from
// github.com/go-air/gini/logic) and an incremental gini solver. Variables are
// interned by key: asking for the same key twice returns the same variable,
// so callers identify propositions with a structured value instead of a
// formatted name.
//
//	e := sat.New[string]()
//	f := e.And(e.Var("a"), e.Not(e.Var("b")))
//	verdict, model, err := e.Check(ctx, f)
//	if verdict == sat.Sat {
//		fmt.Println(model.Value("a")) // true
//	}
//
// Each call to [Engine.Check] adds the not yet encoded part of the circuit to
// the solver and solves under the assumption that the formula holds, so a
// sequence of checks on overlapping formulas reuses learned clauses.
//
// An Engine is not safe for concurrent use.
package sat

package sat

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// Format renders f as an s-expression, e.g.
//
//	(and a (or b (not c)))
//
// Nested conjunctions are flattened and their operands are listed in
// creation order. A negated conjunction is printed as the disjunction of the
// negated operands. Variables are printed with
// fmt.Sprint of their key.
func (e *Engine[K]) Format(f Formula) string {
	var b strings.Builder
	e.format(&b, f.lit)
	return b.String()
}

func (e *Engine[K]) format(b *strings.Builder, m z.Lit) {
	switch m {
	case e.c.T:
		b.WriteString("true")
		return
	case e.c.F:
		b.WriteString("false")
		return
	}
	if key, ok := e.keys[m.Var()]; ok {
		if m.IsPos() {
			fmt.Fprint(b, key)
		} else {
			fmt.Fprintf(b, "(not %v)", key)
		}
		return
	}

	op := "and"
	ops := e.conjuncts(m.Var().Pos(), nil)
	slices.SortStableFunc(ops, func(x, y z.Lit) int { return cmp.Compare(x.Var(), y.Var()) })
	if !m.IsPos() {
		op = "or"
		for i := range ops {
			ops[i] = ops[i].Not()
		}
	}
	b.WriteString("(" + op)
	for _, o := range ops {
		b.WriteByte(' ')
		e.format(b, o)
	}
	b.WriteByte(')')
}

// conjuncts appends the operands of the and-node m, descending into
// positive and-nodes.
func (e *Engine[K]) conjuncts(m z.Lit, dst []z.Lit) []z.Lit {
	if _, ok := e.keys[m.Var()]; ok || !m.IsPos() {
		return append(dst, m)
	}
	a, b := e.c.Ins(m)
	if a == z.LitNull {
		return append(dst, m)
	}
	dst = e.conjuncts(a, dst)
	return e.conjuncts(b, dst)
}

// WriteDIMACS writes f as a CNF problem in DIMACS format. The header
// comments map each variable of f to its key.
func (e *Engine[K]) WriteDIMACS(w io.Writer, f Formula) error {
	bw := bufio.NewWriter(w)
	for _, v := range e.support(f) {
		fmt.Fprintf(bw, "c %d %v\n", uint32(v), e.keys[v])
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	g := gini.New()
	e.c.ToCnfFrom(g, f.lit)
	g.Add(f.lit)
	g.Add(0)
	return g.Write(w)
}

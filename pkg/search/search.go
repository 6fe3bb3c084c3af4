// Package search drives the per-length satisfiability checks.
//
// [Run] tries path lengths one at a time, in ascending order from 0 or in
// descending order from the smallest graph order minus one. Each length is
// solved exactly once. Unless the search is exhaustive it stops at the first
// satisfiable length. Every attempt is reported, together with the decoded
// paths for satisfiable lengths.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/equalpath/pkg/encode"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
	"github.com/matzehuels/equalpath/pkg/observability"
	"github.com/matzehuels/equalpath/pkg/sat"
)

// Order is the direction in which lengths are tried.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// ParseOrder parses "ascending" or "descending". The empty string is
// Ascending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	}
	return Ascending, errs.New(errs.ErrCodeInvalidInput, "unknown search order %q (want ascending or descending)", s)
}

// MarshalText encodes the order as its String form.
func (o Order) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText parses the order with ParseOrder.
func (o *Order) UnmarshalText(b []byte) error {
	v, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Options controls a search.
type Options struct {
	Order      Order
	Exhaustive bool
	// Logger receives per-attempt debug output. Nil uses log.Default().
	Logger *log.Logger
}

// Attempt is the outcome of checking one length.
type Attempt struct {
	Length   int
	Verdict  sat.Verdict
	Paths    []encode.Path // one per graph, only when Verdict is Sat
	Formula  sat.Formula
	Duration time.Duration
}

// Result collects every attempt of a search in the order they were made.
type Result struct {
	Attempts []Attempt
	Duration time.Duration
}

// Found returns the satisfiable attempts.
func (r *Result) Found() []Attempt {
	var out []Attempt
	for _, a := range r.Attempts {
		if a.Verdict == sat.Sat {
			out = append(out, a)
		}
	}
	return out
}

// First returns the first satisfiable attempt.
func (r *Result) First() (Attempt, bool) {
	for _, a := range r.Attempts {
		if a.Verdict == sat.Sat {
			return a, true
		}
	}
	return Attempt{}, false
}

// Lengths returns the lengths a search will try for graphs, in order.
func Lengths(graphs []*graph.Graph, order Order) []int {
	n := graph.MinOrder(graphs)
	ks := make([]int, n)
	for i := range ks {
		if order == Descending {
			ks[i] = n - 1 - i
		} else {
			ks[i] = i
		}
	}
	return ks
}

// Run checks the lengths of Lengths(graphs, opts.Order) one by one with enc.
// UNSAT and UNKNOWN verdicts are recorded and the search moves on. An error
// stops the search and is returned together with the attempts made so far.
func Run(ctx context.Context, enc *encode.Encoder, graphs []*graph.Graph, opts Options) (*Result, error) {
	if len(graphs) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no graphs given")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, len(graphs), opts.Order.String(), opts.Exhaustive)

	start := time.Now()
	res := &Result{}
	err := run(ctx, enc, graphs, opts, logger, res)
	res.Duration = time.Since(start)
	hooks.OnSearchComplete(ctx, len(res.Attempts), len(res.Found()), res.Duration, err)
	return res, err
}

func run(ctx context.Context, enc *encode.Encoder, graphs []*graph.Graph, opts Options, logger *log.Logger, res *Result) error {
	hooks := observability.Search()
	for _, k := range Lengths(graphs, opts.Order) {
		if err := ctx.Err(); err != nil {
			return err
		}
		attemptStart := time.Now()
		f, err := enc.PathFormula(graphs, k)
		if err != nil {
			return err
		}
		v, model, err := enc.Engine().Check(ctx, f)
		if err != nil {
			return err
		}
		a := Attempt{Length: k, Verdict: v, Formula: f}
		if v == sat.Sat {
			if a.Paths, err = encode.DecodePaths(model, graphs, k); err != nil {
				return fmt.Errorf("length %d: %w", k, err)
			}
		}
		a.Duration = time.Since(attemptStart)
		res.Attempts = append(res.Attempts, a)

		hooks.OnAttempt(ctx, k, v.String(), a.Duration)
		logger.Debug("checked length", "length", k, "verdict", v.String(), "duration", a.Duration)

		if v == sat.Sat && !opts.Exhaustive {
			return nil
		}
	}
	return nil
}

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/equalpath/pkg/encode"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
	"github.com/matzehuels/equalpath/pkg/observability"
	"github.com/matzehuels/equalpath/pkg/sat"
)

func buildGraph(t *testing.T, name, src, tgt string, edges ...string) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(name)
	add := func(n string) {
		if _, err := b.EnsureNode(n); err != nil {
			t.Fatal(err)
		}
	}
	add(src)
	for _, e := range edges {
		from, to, _ := strings.Cut(e, "->")
		add(from)
		add(to)
		if err := b.AddEdge(from, to); err != nil {
			t.Fatal(err)
		}
	}
	add(tgt)
	_ = b.MarkSource(src)
	_ = b.MarkTarget(tgt)
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// lengths1and3 has simple s→t paths of length 1 and 3; sharedThree has
// lengths 2 and 3.
func fixtures(t *testing.T) []*graph.Graph {
	t.Helper()
	return []*graph.Graph{
		buildGraph(t, "lengths1and3", "s", "t", "s->a", "a->b", "b->t", "s->t"),
		buildGraph(t, "sharedThree", "s", "t", "s->x", "x->t", "x->y", "y->t"),
	}
}

func summary(r *Result) []string {
	out := make([]string, len(r.Attempts))
	for i, a := range r.Attempts {
		out[i] = fmt.Sprintf("%d:%v", a.Length, a.Verdict)
	}
	return out
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"ascending", Options{}, []string{"0:UNSAT", "1:UNSAT", "2:UNSAT", "3:SAT"}},
		{"descending", Options{Order: Descending}, []string{"3:SAT"}},
		{"exhaustive", Options{Exhaustive: true}, []string{"0:UNSAT", "1:UNSAT", "2:UNSAT", "3:SAT"}},
		{"descending exhaustive", Options{Order: Descending, Exhaustive: true}, []string{"3:SAT", "2:UNSAT", "1:UNSAT", "0:UNSAT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graphs := fixtures(t)
			res, err := Run(context.Background(), encode.NewEncoder(nil), graphs, tt.opts)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if diff := cmp.Diff(tt.want, summary(res)); diff != "" {
				t.Errorf("attempts mismatch (-want +got):\n%s", diff)
			}

			first, ok := res.First()
			if !ok || first.Length != 3 {
				t.Fatalf("First() = %+v, %v; want length 3", first, ok)
			}
			if len(first.Paths) != 2 {
				t.Fatalf("got %d paths, want 2", len(first.Paths))
			}
			for i, p := range first.Paths {
				if err := p.Validate(graphs[i]); err != nil {
					t.Errorf("path %d: %v", i, err)
				}
				if p.Len() != 3 {
					t.Errorf("path %d length %d, want 3", i, p.Len())
				}
			}
		})
	}
}

func TestRunNoCommonLength(t *testing.T) {
	graphs := []*graph.Graph{
		buildGraph(t, "two", "s", "t", "s->m", "m->t"),
		buildGraph(t, "three", "s", "t", "s->a", "a->b", "b->t"),
	}
	res, err := Run(context.Background(), encode.NewEncoder(nil), graphs, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Attempts) != 3 {
		t.Errorf("got %d attempts, want 3", len(res.Attempts))
	}
	if len(res.Found()) != 0 {
		t.Error("expected no satisfiable length")
	}
	if _, ok := res.First(); ok {
		t.Error("First() should report nothing found")
	}
}

func TestRunExhaustiveFindsEveryLength(t *testing.T) {
	g := buildGraph(t, "g", "s", "t", "s->a", "a->b", "b->t", "s->t", "a->t")
	res, err := Run(context.Background(), encode.NewEncoder(nil, encode.WithPruning(false)),
		[]*graph.Graph{g}, Options{Exhaustive: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var got []int
	for _, a := range res.Found() {
		got = append(got, a.Length)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("found lengths mismatch (-want +got):\n%s", diff)
	}
}

// unreachableChain is a chain s→n1→…→n<n-2> with an isolated target, so
// every length up to n-1 is UNSAT.
func unreachableChain(t *testing.T, n int) *graph.Graph {
	t.Helper()
	edges := make([]string, 0, n-2)
	prev := "s"
	for i := 1; i < n-1; i++ {
		next := fmt.Sprintf("n%d", i)
		edges = append(edges, prev+"->"+next)
		prev = next
	}
	return buildGraph(t, "chain", "s", "t", edges...)
}

func TestRunCancellableContextKeepsPace(t *testing.T) {
	graphs := []*graph.Graph{unreachableChain(t, 40)}

	timed := func(ctx context.Context) (time.Duration, int) {
		start := time.Now()
		res, err := Run(ctx, encode.NewEncoder(nil), graphs, Options{})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return time.Since(start), len(res.Attempts)
	}

	background, n := timed(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancellable, m := timed(ctx)

	if n != 40 || m != 40 {
		t.Fatalf("attempts = %d, %d; want 40", n, m)
	}
	// A few milliseconds of slack per attempt still fails a 10ms poll.
	if limit := background + time.Duration(n)*3*time.Millisecond + 100*time.Millisecond; cancellable > limit {
		t.Errorf("cancellable search took %v, background %v (limit %v)", cancellable, background, limit)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(context.Background(), encode.NewEncoder(nil), nil, Options{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Run(nil) error = %v, want INVALID_INPUT", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, encode.NewEncoder(nil), fixtures(t), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res == nil || len(res.Attempts) != 0 {
		t.Errorf("cancelled search should return an empty result, got %+v", res)
	}
}

func TestLengths(t *testing.T) {
	graphs := fixtures(t)
	if diff := cmp.Diff([]int{0, 1, 2, 3}, Lengths(graphs, Ascending)); diff != "" {
		t.Errorf("ascending mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 2, 1, 0}, Lengths(graphs, Descending)); diff != "" {
		t.Errorf("descending mismatch:\n%s", diff)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", Ascending, false},
		{"ascending", Ascending, false},
		{"DESC", Descending, false},
		{"descending", Descending, false},
		{"sideways", Ascending, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrder(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseOrder(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopSearchHooks
	mu       sync.Mutex
	verdicts []string
	found    int
}

func (h *recordingHooks) OnAttempt(_ context.Context, _ int, verdict string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verdicts = append(h.verdicts, verdict)
}

func (h *recordingHooks) OnSearchComplete(_ context.Context, _, found int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.found = found
}

func TestRunEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSearchHooks(hooks)
	defer observability.Reset()

	if _, err := Run(context.Background(), encode.NewEncoder(nil), fixtures(t), Options{Order: Descending}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{sat.Sat.String()}, hooks.verdicts); diff != "" {
		t.Errorf("verdicts mismatch (-want +got):\n%s", diff)
	}
	if hooks.found != 1 {
		t.Errorf("found = %d, want 1", hooks.found)
	}
}

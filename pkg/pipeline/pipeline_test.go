package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/equalpath/pkg/cache"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/observability"
	"github.com/matzehuels/equalpath/pkg/sat"
	"github.com/matzehuels/equalpath/pkg/search"
)

// lengthsOneAndThree has s→t paths of length 1 and 3.
var lengthsOneAndThree = Input{
	Name: "g.dot",
	Content: `digraph g {
		s [initial=1]; t [final=1];
		s -> a; a -> b; b -> t; s -> t;
	}`,
}

// onlyThree has a single s→t path of length 3.
var onlyThree = Input{
	Name: "h.dot",
	Content: `digraph h {
		s [initial=1]; t [final=1];
		s -> x; x -> y; y -> t;
	}`,
}

var onlyTwoJSON = Input{
	Name:   "j.json",
	Format: "json",
	Content: `{"nodes":[{"id":"s","source":true},{"id":"m"},{"id":"t","target":true}],
		"edges":[{"from":"s","to":"m"},{"from":"m","to":"t"}]}`,
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeSeparate, false},
		{"separate", ModeSeparate, false},
		{"GLOBAL", ModeGlobal, false},
		{"both", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"zero value", Options{}, false},
		{"global", Options{Mode: ModeGlobal}, false},
		{"global exhaustive", Options{Mode: ModeGlobal, Exhaustive: true}, true},
		{"global descending", Options{Mode: ModeGlobal, Order: search.Descending}, true},
		{"bad order", Options{Order: search.Order(7)}, true},
		{"bad mode", Options{Mode: "sideways"}, true},
		{"traversal", Options{OutputDir: "../out"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Validate() code = %s, want INVALID_INPUT", errs.GetCode(err))
			}
		})
	}

	o := Options{SVG: true}
	if err := o.Validate(); err != nil {
		t.Fatal(err)
	}
	if o.OutputDir != DefaultOutputDir {
		t.Errorf("SVG without dir: OutputDir = %q, want %q", o.OutputDir, DefaultOutputDir)
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name       string
		inputs     []Input
		opts       Options
		wantFound  bool
		wantLength int
		wantPaths  [][][]string // per satisfiable attempt
	}{
		{
			name:       "separate",
			inputs:     []Input{lengthsOneAndThree, onlyThree},
			opts:       DefaultOptions(),
			wantFound:  true,
			wantLength: 3,
			wantPaths:  [][][]string{{{"s", "a", "b", "t"}, {"s", "x", "y", "t"}}},
		},
		{
			name:       "global",
			inputs:     []Input{lengthsOneAndThree, onlyThree},
			opts:       Options{Mode: ModeGlobal},
			wantFound:  true,
			wantLength: 3,
			wantPaths:  [][][]string{{{"s", "a", "b", "t"}, {"s", "x", "y", "t"}}},
		},
		{
			name:       "descending exhaustive",
			inputs:     []Input{lengthsOneAndThree},
			opts:       Options{Order: search.Descending, Exhaustive: true},
			wantFound:  true,
			wantLength: 3,
			wantPaths:  [][][]string{{{"s", "a", "b", "t"}}, {{"s", "t"}}},
		},
		{
			name:       "no optimize",
			inputs:     []Input{lengthsOneAndThree},
			opts:       Options{NoOptimize: true},
			wantFound:  true,
			wantLength: 1,
			wantPaths:  [][][]string{{{"s", "t"}}},
		},
		{
			name:       "no common length",
			inputs:     []Input{onlyThree, onlyTwoJSON},
			opts:       DefaultOptions(),
			wantFound:  false,
			wantLength: -1,
		},
		{
			name:       "no common length global",
			inputs:     []Input{onlyThree, onlyTwoJSON},
			opts:       Options{Mode: ModeGlobal},
			wantFound:  false,
			wantLength: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := quietRunner(nil).Execute(context.Background(), tt.inputs, tt.opts)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			rep := res.Report
			if rep.Found != tt.wantFound || rep.Length != tt.wantLength {
				t.Errorf("Found, Length = %v, %d; want %v, %d", rep.Found, rep.Length, tt.wantFound, tt.wantLength)
			}
			var got [][][]string
			for _, a := range rep.FoundAttempts() {
				got = append(got, a.Paths)
			}
			if diff := cmp.Diff(tt.wantPaths, got); diff != "" {
				t.Errorf("paths mismatch (-want +got):\n%s", diff)
			}
			if rep.RunID == "" {
				t.Error("RunID is empty")
			}
			if len(rep.Graphs) != len(tt.inputs) {
				t.Errorf("len(Graphs) = %d, want %d", len(rep.Graphs), len(tt.inputs))
			}
			if rep.Stats.Variables == 0 {
				t.Error("Stats.Variables = 0")
			}
		})
	}
}

func TestExecuteGraphSummary(t *testing.T) {
	res, err := quietRunner(nil).Execute(context.Background(), []Input{onlyTwoJSON}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	want := []GraphSummary{{Name: "j.json", Nodes: 3, Edges: 2, Source: "s", Target: "t"}}
	if diff := cmp.Diff(want, res.Report.Graphs); diff != "" {
		t.Errorf("Graphs mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteFormula(t *testing.T) {
	in := Input{Name: "one", Content: `digraph { a [initial=1, final=1]; }`}
	res, err := quietRunner(nil).Execute(context.Background(), []Input{in}, Options{Formula: true})
	if err != nil {
		t.Fatal(err)
	}
	a := res.Report.Attempts[0]
	if a.Formula != "X0,0,0,0" {
		t.Errorf("Formula = %q, want %q", a.Formula, "X0,0,0,0")
	}
	if a.Verdict != sat.Sat || res.Report.Length != 0 {
		t.Errorf("attempt = %+v", a)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name   string
		inputs []Input
		opts   Options
		code   errs.Code
	}{
		{"no inputs", nil, DefaultOptions(), errs.ErrCodeInvalidInput},
		{"bad name", []Input{{Name: "a/b", Content: onlyThree.Content}}, DefaultOptions(), errs.ErrCodeInvalidInput},
		{"bad format", []Input{{Name: "x", Format: "yaml", Content: "a: b"}}, DefaultOptions(), errs.ErrCodeInvalidFormat},
		{"no source", []Input{{Name: "x", Content: `digraph { t [final=1]; }`}}, DefaultOptions(), errs.ErrCodeNoSource},
		{"bad options", []Input{onlyThree}, Options{Mode: ModeGlobal, Exhaustive: true}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietRunner(nil).Execute(context.Background(), tt.inputs, tt.opts)
			if !errs.Is(err, tt.code) {
				t.Errorf("Execute error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quietRunner(nil).Execute(ctx, []Input{onlyThree}, DefaultOptions()); err == nil {
		t.Error("Execute with cancelled context succeeded")
	}
}

type cacheRecorder struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set int
}

func (h *cacheRecorder) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *cacheRecorder) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *cacheRecorder) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set++
}

func TestExecuteCache(t *testing.T) {
	hooks := &cacheRecorder{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	ctx := context.Background()
	inputs := []Input{lengthsOneAndThree, onlyThree}

	first, err := r.Execute(ctx, inputs, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first.Report.Cached {
		t.Error("first run reported as cached")
	}

	second, err := r.Execute(ctx, inputs, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.Report.Cached {
		t.Error("second run not served from cache")
	}
	if second.Report.RunID == first.Report.RunID {
		t.Error("cached run reused the RunID")
	}
	if diff := cmp.Diff(first.Report.Attempts, second.Report.Attempts); diff != "" {
		t.Errorf("cached attempts differ (-first +second):\n%s", diff)
	}

	opts := DefaultOptions()
	opts.Refresh = true
	third, err := r.Execute(ctx, inputs, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Report.Cached {
		t.Error("refresh run served from cache")
	}

	opts = DefaultOptions()
	opts.Order = search.Descending
	fourth, err := r.Execute(ctx, inputs, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.Report.Cached {
		t.Error("different options hit the same cache entry")
	}

	if hooks.hits != 1 || hooks.misses != 2 || hooks.set != 3 {
		t.Errorf("hooks hits/misses/set = %d/%d/%d, want 1/2/3", hooks.hits, hooks.misses, hooks.set)
	}
}

func TestExecuteExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sol")
	opts := Options{Exhaustive: true, OutputDir: dir}
	res, err := quietRunner(nil).Execute(context.Background(), []Input{lengthsOneAndThree}, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "result-l1.dot"), filepath.Join(dir, "result-l3.dot")}
	if diff := cmp.Diff(want, res.Exports); diff != "" {
		t.Errorf("Exports mismatch (-want +got):\n%s", diff)
	}
	for _, f := range want {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("export missing: %v", err)
		}
	}
}

func TestExecuteExportFromCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	ctx := context.Background()
	if _, err := r.Execute(ctx, []Input{onlyThree}, DefaultOptions()); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir
	res, err := r.Execute(ctx, []Input{onlyThree}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Report.Cached {
		t.Fatal("expected cache hit")
	}
	data, err := os.ReadFile(filepath.Join(dir, "result-l3.dot"))
	if err != nil {
		t.Fatalf("export from cached report: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty export")
	}
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.json")
	if err := os.WriteFile(path, []byte(onlyTwoJSON.Content), 0o644); err != nil {
		t.Fatal(err)
	}
	inputs, err := ReadInputs([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	want := []Input{{Name: "g.json", Format: "json", Content: onlyTwoJSON.Content}}
	if diff := cmp.Diff(want, inputs); diff != "" {
		t.Errorf("ReadInputs mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadInputs([]string{filepath.Join(dir, "missing.dot")})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestInputHash(t *testing.T) {
	a := onlyThree
	b := onlyThree
	b.Name = "renamed.dot"
	if a.Hash() == b.Hash() {
		t.Error("Hash ignores the name")
	}
	if a.Hash() != onlyThree.Hash() {
		t.Error("Hash is not deterministic")
	}
}

func TestReportRoundTrip(t *testing.T) {
	res, err := quietRunner(nil).Execute(context.Background(), []Input{lengthsOneAndThree}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	data, err := res.Report.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalReport(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res.Report, got); diff != "" {
		t.Errorf("report round trip (-want +got):\n%s", diff)
	}
}

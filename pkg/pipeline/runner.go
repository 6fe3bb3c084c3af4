package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/equalpath/pkg/cache"
	"github.com/matzehuels/equalpath/pkg/encode"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
	"github.com/matzehuels/equalpath/pkg/observability"
	"github.com/matzehuels/equalpath/pkg/sat"
	"github.com/matzehuels/equalpath/pkg/search"
)

// reportKeyType labels report entries in cache hooks.
const reportKeyType = "report"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Every Execute
// builds its own SAT engine, so multiple goroutines can safely share a
// Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.DefaultKeyer{}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the serializable outcome.
	Report *Report

	// Graphs are the parsed inputs, in input order.
	Graphs []*graph.Graph

	// Exports lists the solution files written, if any.
	Exports []string
}

// Execute runs the complete load → search → decode → export pipeline.
// A cached report for the same inputs and options is reused unless
// opts.Refresh is set; solution files are written either way.
func (r *Runner) Execute(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}

	loadStart := time.Now()
	graphs, err := Parse(ctx, inputs)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("loaded graphs", "count", len(graphs), "duration", time.Since(loadStart))
	for _, g := range graphs {
		opts.Logger.Debug("parsed graph\n" + g.String())
	}

	hashes := make([]string, len(inputs))
	for i, in := range inputs {
		hashes[i] = in.Hash()
	}
	key := r.Keyer.ReportKey(hashes, opts.ReportKeyOpts())

	report, hit := r.cachedReport(ctx, key, opts)
	if !hit {
		if report, err = Solve(ctx, graphs, opts); err != nil {
			return nil, err
		}
		r.storeReport(ctx, key, report, opts.CacheTTL)
	}
	report.RunID = uuid.NewString()
	report.Cached = hit

	opts.Logger.Info("search finished",
		"found", report.Found,
		"length", report.Length,
		"tried", report.Tried,
		"cached", hit)

	res := &Result{Report: report, Graphs: graphs}
	if opts.Exports() {
		if res.Exports, err = Export(ctx, graphs, report, opts); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Solve runs the search selected by opts over already parsed graphs,
// bypassing the cache.
func Solve(ctx context.Context, graphs []*graph.Graph, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	engine := sat.New[encode.VarKey]()
	enc := encode.NewEncoder(engine,
		encode.WithPruning(!opts.NoOptimize),
		encode.WithLogger(logger))

	report := &Report{
		Mode:   opts.Mode,
		Order:  opts.Order,
		Graphs: summarize(graphs),
		Length: -1,
	}

	start := time.Now()
	var err error
	switch opts.Mode {
	case ModeGlobal:
		err = solveGlobal(ctx, enc, graphs, opts, report)
	default:
		err = solveSeparate(ctx, enc, graphs, opts, report)
	}
	if err != nil {
		return nil, err
	}
	report.Stats = Stats{
		Variables:  engine.NumVars(),
		Gates:      engine.Size(),
		DurationMS: ms(time.Since(start)),
	}
	return report, nil
}

func solveSeparate(ctx context.Context, enc *encode.Encoder, graphs []*graph.Graph, opts Options, report *Report) error {
	res, err := search.Run(ctx, enc, graphs, search.Options{
		Order:      opts.Order,
		Exhaustive: opts.Exhaustive,
		Logger:     opts.Logger,
	})
	if err != nil {
		return err
	}

	report.Tried = len(res.Attempts)
	for _, a := range res.Attempts {
		ar := AttemptReport{
			Length:     a.Length,
			Verdict:    a.Verdict,
			Paths:      pathNames(graphs, a.Paths),
			DurationMS: ms(a.Duration),
		}
		if opts.Formula {
			ar.Formula = enc.Engine().Format(a.Formula)
		}
		report.Attempts = append(report.Attempts, ar)
	}
	if first, ok := res.First(); ok {
		report.Found, report.Length = true, first.Length
	}
	return nil
}

func solveGlobal(ctx context.Context, enc *encode.Encoder, graphs []*graph.Graph, opts Options, report *Report) error {
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, len(graphs), string(ModeGlobal), false)

	start := time.Now()
	ex, err := enc.ExistenceFormula(ctx, graphs)
	tried, found := 0, 0
	if ex != nil {
		tried = ex.Tried
		if ex.Verdict == sat.Sat {
			found = 1
		}
	}
	d := time.Since(start)
	hooks.OnSearchComplete(ctx, tried, found, d, err)
	if err != nil {
		return err
	}

	report.Tried = ex.Tried
	a := AttemptReport{Length: -1, Verdict: ex.Verdict, DurationMS: ms(d)}
	if opts.Formula {
		a.Formula = enc.Engine().Format(ex.Formula)
	}
	if ex.Verdict == sat.Sat {
		k, err := encode.RecoverLength(ex.Model, graphs)
		if err != nil {
			return err
		}
		if k != ex.Length {
			return errs.New(errs.ErrCodeInconsistentModel,
				"model encodes length %d but length %d was satisfiable", k, ex.Length)
		}
		paths, err := encode.DecodePaths(ex.Model, graphs, k)
		if err != nil {
			return err
		}
		a.Length, a.Paths = k, pathNames(graphs, paths)
		report.Found, report.Length = true, k
	}
	report.Attempts = []AttemptReport{a}
	return nil
}

func (r *Runner) cachedReport(ctx context.Context, key string, opts Options) (*Report, bool) {
	if opts.Refresh {
		return nil, false
	}
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		hooks.OnCacheMiss(ctx, reportKeyType)
		return nil, false
	}
	report, err := UnmarshalReport(data)
	if err != nil {
		opts.Logger.Debug("discarding unreadable cache entry", "err", err)
		hooks.OnCacheMiss(ctx, reportKeyType)
		return nil, false
	}
	hooks.OnCacheHit(ctx, reportKeyType)
	return report, true
}

func (r *Runner) storeReport(ctx context.Context, key string, report *Report, ttl time.Duration) {
	data, err := report.Marshal()
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, reportKeyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

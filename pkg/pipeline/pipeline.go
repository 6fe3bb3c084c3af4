// Package pipeline runs the complete load → search → decode → export
// sequence behind both the CLI and the HTTP API.
//
// By centralizing this logic, both entry points agree on option defaults,
// cache keys, and the shape of the [Report] they hand back.
//
// # Modes
//
// Two search modes are supported:
//
//  1. separate: every candidate length is encoded and checked on its own,
//     in ascending or descending order, optionally exhaustively
//  2. global: one disjunction over lengths 0, 1, ... is grown until it is
//     satisfiable; the common length is then read back from the model
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	inputs, err := pipeline.ReadInputs([]string{"g1.dot", "g2.dot"})
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Execute(ctx, inputs, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Report.Found, res.Report.Length)
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/equalpath/pkg/cache"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/search"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultOutputDir is where solution DOT files are written.
	DefaultOutputDir = "sol"

	// DefaultCacheTTL is how long a cached report stays valid.
	DefaultCacheTTL = 24 * time.Hour

	// MaxGraphs bounds the number of graphs in one run.
	MaxGraphs = 64
)

// Mode selects how lengths are searched.
type Mode string

const (
	ModeSeparate Mode = "separate"
	ModeGlobal   Mode = "global"
)

// ParseMode parses "separate" or "global". The empty string selects
// ModeSeparate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeSeparate:
		return ModeSeparate, nil
	case ModeGlobal:
		return ModeGlobal, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "invalid mode %q (must be separate or global)", s)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Mode       Mode         `json:"mode,omitempty"`
	Order      search.Order `json:"order"`
	Exhaustive bool         `json:"exhaustive,omitempty"`
	NoOptimize bool         `json:"no_optimize,omitempty"` // disable reachability pruning
	Formula    bool         `json:"formula,omitempty"`     // include formula text in the report
	Refresh    bool         `json:"refresh,omitempty"`     // ignore cached reports

	// Export options (CLI only)
	OutputDir string `json:"-"`
	SVG       bool   `json:"-"`

	// Runtime options (not serialized)
	CacheTTL time.Duration `json:"-"`
	Logger   *log.Logger   `json:"-"`
}

// DefaultOptions returns ascending, pruned, separate-mode options.
func DefaultOptions() Options {
	return Options{Mode: ModeSeparate, Order: search.Ascending, CacheTTL: DefaultCacheTTL}
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	mode, err := ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode
	if o.Order != search.Ascending && o.Order != search.Descending {
		return errs.New(errs.ErrCodeInvalidInput, "invalid order %d", int(o.Order))
	}
	if o.Mode == ModeGlobal && (o.Exhaustive || o.Order != search.Ascending) {
		return errs.New(errs.ErrCodeInvalidInput, "global mode searches ascending and stops at the first length")
	}
	if o.OutputDir != "" {
		if err := errs.ValidateOutputDir(o.OutputDir); err != nil {
			return err
		}
	}
	if o.SVG && o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.CacheTTL < 0 {
		o.CacheTTL = 0
	}
	return nil
}

// Exports reports whether solution files should be written.
func (o *Options) Exports() bool { return o.OutputDir != "" }

// ReportKeyOpts returns cache key options for the report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		Mode:       string(o.Mode),
		Order:      o.Order.String(),
		Exhaustive: o.Exhaustive,
		Optimize:   !o.NoOptimize,
		Formula:    o.Formula,
	}
}

// Package cli implements the equalpath command-line interface.
//
// The CLI loads graph files, runs the SAT-based length search through the
// pipeline package, and prints the verdict and decoded paths. It also
// exposes the formula itself, the parsed graphs, the report cache, and an
// HTTP server. The CLI is built using cobra and logs via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - solve: search for a common path length and print the paths
//   - formula: print the formula for one length, or DIMACS CNF
//   - graph: print parsed graphs and their reachability layers
//   - serve: run the HTTP API
//   - cache: manage the report cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger writing to w. Messages below level are
// dropped; the CLI uses info by default and debug with --verbose.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is meant for one goroutine; concurrent calls to done race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing an operation. Call done when it finishes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level along with the elapsed time since progress
// was created, rounded to the millisecond, e.g. "Searched 3 graphs (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey stores the command logger in a context.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// PersistentPreRunE attaches the CLI logger so every command, and the
// pipeline it drives, logs through the same writer and level.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default(), so commands run
// directly in tests still have one.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

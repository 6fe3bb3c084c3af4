package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// runCLIWithLogs runs the CLI with a logger at level and returns what was
// written to stdout and to the log.
func runCLIWithLogs(t *testing.T, level log.Level, args ...string) (stdout, logs string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New(&errOut, level)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return ansi.ReplaceAllString(out.String(), ""), ansi.ReplaceAllString(errOut.String(), ""), err
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("search finished", "found", true)

	line := ansi.ReplaceAllString(buf.String(), "")
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("log line should start with HH:MM:SS.ms, got %q", line)
	}
	if !strings.Contains(line, "found=true") {
		t.Errorf("log line missing key/value: %q", line)
	}
}

func TestSolveLogging(t *testing.T) {
	workspace(t)
	tests := []struct {
		name     string
		level    log.Level
		want     []string
		wantNone []string
	}{
		{
			name:     "info",
			level:    LogInfo,
			want:     []string{"Searched 2 graphs (", "search finished"},
			wantNone: []string{"checked length", "parsed graph"},
		},
		{
			name:  "verbose",
			level: LogDebug,
			want:  []string{"parsed graph", "g.dot: 4 nodes", "checked length", "length=3", "verdict=SAT"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, logs, err := runCLIWithLogs(t, tt.level, "solve", "--no-cache", "g.dot", "h.dot")
			if err != nil {
				t.Fatalf("solve: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(logs, w) {
					t.Errorf("log missing %q:\n%s", w, logs)
				}
			}
			for _, w := range tt.wantNone {
				if strings.Contains(logs, w) {
					t.Errorf("log should not contain %q:\n%s", w, logs)
				}
			}
		})
	}
}

func TestVerboseLogsGraphsBeforeSearching(t *testing.T) {
	workspace(t)
	_, logs, err := runCLIWithLogs(t, LogDebug, "solve", "--no-cache", "g.dot", "h.dot")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	parsed := strings.LastIndex(logs, "parsed graph")
	checked := strings.Index(logs, "checked length")
	if parsed < 0 || checked < 0 || parsed > checked {
		t.Errorf("parsed graphs should be logged before the first checked length:\n%s", logs)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Searched 3 graphs")

	got := ansi.ReplaceAllString(buf.String(), "")
	if !regexp.MustCompile(`Searched 3 graphs \([0-9.]+m?s\)`).MatchString(got) {
		t.Errorf("progress line = %q, want message with elapsed time", got)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a context without a logger should yield log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	ctx := withLogger(context.Background(), l)
	if got := loggerFromContext(ctx); got != l {
		t.Errorf("loggerFromContext() = %p, want %p", got, l)
	}
}

package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/equalpath/pkg/encode"
	"github.com/matzehuels/equalpath/pkg/graph"
	gio "github.com/matzehuels/equalpath/pkg/io"
	"github.com/matzehuels/equalpath/pkg/observability"
)

// Export writes one solution DOT file per satisfiable attempt of report
// into opts.OutputDir, plus an SVG rendering when opts.SVG is set. It
// returns the paths written.
func Export(ctx context.Context, graphs []*graph.Graph, report *Report, opts Options) ([]string, error) {
	hooks := observability.Pipeline()
	var written []string
	for _, a := range report.FoundAttempts() {
		paths, err := pathsFromNames(graphs, a.Paths)
		if err != nil {
			return written, err
		}

		start := time.Now()
		file, err := gio.ExportSolutionDOT(opts.OutputDir, graphs, paths, a.Length)
		hooks.OnExportComplete(ctx, file, time.Since(start), err)
		if err != nil {
			return written, err
		}
		written = append(written, file)

		if !opts.SVG {
			continue
		}
		start = time.Now()
		svgFile := strings.TrimSuffix(file, ".dot") + ".svg"
		err = exportSVG(ctx, svgFile, graphs, paths, a.Length)
		hooks.OnExportComplete(ctx, svgFile, time.Since(start), err)
		if err != nil {
			return written, err
		}
		written = append(written, svgFile)
	}
	return written, nil
}

func exportSVG(ctx context.Context, file string, graphs []*graph.Graph, paths []encode.Path, k int) error {
	dot, err := gio.ToSolutionDOT(graphs, paths, k)
	if err != nil {
		return err
	}
	svg, err := gio.RenderSVG(ctx, dot)
	if err != nil {
		return fmt.Errorf("render %s: %w", file, err)
	}
	return os.WriteFile(file, svg, 0o644)
}

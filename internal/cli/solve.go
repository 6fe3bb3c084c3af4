package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/pipeline"
	"github.com/matzehuels/equalpath/pkg/sat"
	"github.com/matzehuels/equalpath/pkg/search"
)

// solveFlags holds the flags of the solve command.
type solveFlags struct {
	separate   bool
	global     bool
	descending bool
	all        bool
	paths      bool
	file       bool
	formula    bool
	svg        bool
	noOptimize bool
	noCache    bool
	refresh    bool
	json       bool
	outDir     string
}

func (c *CLI) solveCommand() *cobra.Command {
	var f solveFlags

	cmd := &cobra.Command{
		Use:   "solve FILE...",
		Short: "Search for a path length shared by all graphs",
		Long: `Search for a length k such that every graph has a simple path of exactly k
edges from its source to its target.

Graph files are DOT (nodes flagged with initial=1 and final=1) or JSON.

In separate mode (-s) each length is encoded and checked on its own, by
default in ascending order, stopping at the first success. In global mode
(-g) a single growing disjunction over all lengths is checked and the
answer is printed as yes or no.`,
		Example: `  equalpath solve g1.dot g2.dot
  equalpath solve -s -a -t g1.dot g2.dot
  equalpath solve -g -f -o sol g1.dot g2.dot`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, args, f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&f.separate, "separate", "s", false, "check each length separately")
	flags.BoolVarP(&f.global, "global", "g", false, "check one disjunction over all lengths")
	flags.BoolVarP(&f.descending, "descending", "d", false, "try lengths from longest to shortest")
	flags.BoolVarP(&f.all, "all", "a", false, "report every common length, not just the first")
	flags.BoolVarP(&f.paths, "trace", "t", false, "print the decoded paths")
	flags.BoolVarP(&f.file, "file", "f", false, "write solutions as DOT files")
	flags.BoolVarP(&f.formula, "formula", "F", false, "print the formula of each checked length")
	flags.BoolVar(&f.svg, "svg", false, "also render solutions as SVG (implies --file)")
	flags.BoolVar(&f.noOptimize, "no-optimize", false, "disable reachability pruning")
	flags.BoolVar(&f.noCache, "no-cache", false, "do not read or write the report cache")
	flags.BoolVar(&f.refresh, "refresh", false, "ignore cached reports")
	flags.BoolVar(&f.json, "json", false, "print the report as JSON")
	flags.StringVarP(&f.outDir, "output", "o", "", "solution directory (default from config, \"sol\")")
	cmd.MarkFlagsMutuallyExclusive("separate", "global")

	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, args []string, f solveFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	opts, err := c.cfg.PipelineOptions()
	if err != nil {
		return err
	}
	switch {
	case f.separate:
		opts.Mode = pipeline.ModeSeparate
	case f.global:
		opts.Mode = pipeline.ModeGlobal
	}
	if f.descending {
		opts.Order = search.Descending
	}
	opts.Exhaustive = opts.Exhaustive || f.all
	opts.NoOptimize = opts.NoOptimize || f.noOptimize
	opts.Formula = f.formula
	opts.Refresh = f.refresh
	opts.Logger = logger

	opts.SVG = f.svg || (f.file && opts.SVG)
	opts.OutputDir = ""
	if f.file || f.svg {
		opts.OutputDir = c.cfg.Output.Dir
		if f.outDir != "" {
			opts.OutputDir = f.outDir
		}
		if opts.OutputDir == "" {
			opts.OutputDir = pipeline.DefaultOutputDir
		}
	}

	inputs, err := pipeline.ReadInputs(args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(f.noCache, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	var spin *spinner
	if !f.json && logger.GetLevel() > log.DebugLevel && isTerminal(cmd.ErrOrStderr()) {
		spin = newSpinner(ctx, cmd.ErrOrStderr(), "Searching for a common path length...")
		spin.Start()
	}
	res, err := runner.Execute(ctx, inputs, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Searched %d graphs", len(res.Graphs)))

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	}
	printReport(out, res, f.paths || f.all)
	return nil
}

// printReport renders a report for the terminal.
func printReport(w io.Writer, res *pipeline.Result, showPaths bool) {
	rep := res.Report

	if rep.Mode == pipeline.ModeGlobal {
		if rep.Found {
			printSuccess(w, "yes: every graph has a path of length %s", StyleNumber.Render(fmt.Sprint(rep.Length)))
		} else {
			printWarning(w, "no: %s", verdictReason(rep.Attempts[0].Verdict))
		}
	} else {
		for _, a := range rep.Attempts {
			switch a.Verdict {
			case sat.Sat:
				printSuccess(w, "length %s: %s", StyleNumber.Render(fmt.Sprint(a.Length)), a.Verdict)
			default:
				printInfo(w, "length %d: %s", a.Length, a.Verdict)
			}
		}
		if !rep.Found {
			printWarning(w, "no common path length among %d graphs", len(rep.Graphs))
		}
	}

	for _, a := range rep.Attempts {
		if a.Formula != "" {
			printDetail(w, "formula (length %d): %s", a.Length, a.Formula)
		}
	}

	if showPaths {
		for _, a := range rep.FoundAttempts() {
			printKeyValue(w, "length", fmt.Sprint(a.Length))
			for i, p := range a.Paths {
				printPath(w, rep.Graphs[i].Name, p)
			}
		}
	}

	printStats(w, rep.Stats.Variables, rep.Stats.Gates, rep.Stats.DurationMS, rep.Cached)
	for _, f := range res.Exports {
		printFile(w, f)
	}
}

func verdictReason(v sat.Verdict) string {
	if v == sat.Unknown {
		return "the solver gave up before finding a common length"
	}
	return "no common path length"
}

// ExitCode maps a command error to a process exit status: 2 for bad input,
// 1 otherwise.
func ExitCode(err error) int {
	if errs.IsInputError(err) {
		return 2
	}
	return 1
}

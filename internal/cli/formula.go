package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/equalpath/pkg/encode"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	gio "github.com/matzehuels/equalpath/pkg/io"
	"github.com/matzehuels/equalpath/pkg/sat"
)

func (c *CLI) formulaCommand() *cobra.Command {
	var (
		length     int
		dimacs     bool
		noOptimize bool
	)

	cmd := &cobra.Command{
		Use:   "formula FILE...",
		Short: "Print the path formula for the given graphs",
		Long: `Print the formula stating that every graph has a simple source-to-target
path of exactly --length edges.

Without --length, the existence formula is printed instead: the disjunction
over lengths 0, 1, ... up to the first satisfiable one.

With --dimacs the formula is written as DIMACS CNF for an external solver;
comment lines map variables back to X<graph>,<position>,<length>,<node>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("length") {
				if err := errs.ValidateLength(length); err != nil {
					return err
				}
			}
			graphs, err := gio.LoadAll(args)
			if err != nil {
				return err
			}

			optimize := c.cfg.Search.Optimize && !noOptimize
			engine := sat.New[encode.VarKey]()
			enc := encode.NewEncoder(engine,
				encode.WithPruning(optimize),
				encode.WithLogger(loggerFromContext(cmd.Context())))

			var f sat.Formula
			if cmd.Flags().Changed("length") {
				if f, err = enc.PathFormula(graphs, length); err != nil {
					return err
				}
			} else {
				ex, err := enc.ExistenceFormula(cmd.Context(), graphs)
				if err != nil {
					return err
				}
				f = ex.Formula
			}

			out := cmd.OutOrStdout()
			if dimacs {
				return engine.WriteDIMACS(out, f)
			}
			_, err = fmt.Fprintln(out, engine.Format(f))
			return err
		},
	}

	cmd.Flags().IntVarP(&length, "length", "k", 0, "path length to encode")
	cmd.Flags().BoolVar(&dimacs, "dimacs", false, "write DIMACS CNF instead of the formula text")
	cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "disable reachability pruning")
	return cmd
}

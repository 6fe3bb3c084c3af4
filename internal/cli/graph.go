package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/equalpath/pkg/encode"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	gio "github.com/matzehuels/equalpath/pkg/io"
)

func (c *CLI) graphCommand() *cobra.Command {
	var (
		asJSON bool
		reach  int
	)

	cmd := &cobra.Command{
		Use:   "graph FILE...",
		Short: "Print parsed graphs",
		Long: `Print each graph as parsed: order, source, target and edges.

With --reach k the nodes reachable from the source by walks of exactly
p edges are listed for every p up to k. These are the only nodes the
formula assigns to position p.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("reach") {
				if err := errs.ValidateLength(reach); err != nil {
					return err
				}
			}
			graphs, err := gio.LoadAll(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, g := range graphs {
				if asJSON {
					if err := gio.WriteJSON(g, out); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(out, g.String())
				if !cmd.Flags().Changed("reach") {
					continue
				}
				cands, err := encode.Prune(g, reach)
				if err != nil {
					return err
				}
				for p := 0; p <= reach; p++ {
					names := make([]string, 0, len(cands.At(p)))
					for _, n := range cands.Sorted(p) {
						names = append(names, g.NodeName(n))
					}
					printDetail(out, "%d: %s", p, strings.Join(names, " "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print graphs as JSON")
	cmd.Flags().IntVar(&reach, "reach", 0, "list reachable nodes per position up to this length")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/equalpath/pkg/cache"
	"github.com/matzehuels/equalpath/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Serve the solver over HTTP until interrupted.

  GET  /healthz   liveness probe
  POST /v1/solve  solve the posted graphs and return the report as JSON

Reports are cached in the configured cache under an "api" scope, so a
redis_url in the [cache] section lets several servers share results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			runner, err := c.newRunner(noCache, cache.NewScopedKeyer("api"))
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, loggerFromContext(cmd.Context()),
				server.WithCacheTTL(c.cfg.Cache.TTL.Duration))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/godepscan/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution API over HTTP",
		Long: `Serve starts an HTTP server exposing resolution and parsing:

  GET  /healthz
  GET  /v1/managers
  POST /v1/resolve          {"root": "/abs/project", "manager": "dep"}
  POST /v1/parse/{manager}  manifest content as the request body

The server never runs 'dep ensure'. Restrict readable directories with
server.allowed_roots in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			srv := server.New(runner, logger, server.Config{
				Addr:                addr,
				AllowedRoots:        c.Config.Server.AllowedRoots,
				DefaultManager:      c.Config.Manager,
				FlushTrailingStanza: c.Config.FlushTrailingStanza,
				CacheTTL:            c.Config.Cache.TTL.Duration,
			})

			printInfo(cmd.ErrOrStderr(), "Serving on http://%s", addr)
			printNextStep(cmd.ErrOrStderr(), "Try", "curl http://"+addr+"/v1/managers")
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServerAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

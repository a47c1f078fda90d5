package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// parseCommand creates the parse command.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		flags   resolveFlags
		manager string
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a single manifest file",
		Long: `Parse reads one Gopkg.lock, Godeps.json or vendor.conf file and prints
its dependency records. The format is detected from the file name; use
--manager for files that were renamed.`,
		Example: `  godepscan parse Gopkg.lock
  godepscan parse deps.lock --manager dep -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.pipelineOptions(ctx)
			opts.Manager = manager
			flags.apply(cmd, &opts)

			prog := newProgress(loggerFromContext(ctx))
			res, err := runner.ParseFile(ctx, args[0], opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Parsed %d dependencies", len(res.Dependencies)))

			w, closeOut, err := flags.writer(cmd)
			if err != nil {
				return err
			}
			if err := writeRecords(w, flags.format, res); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&manager, "manager", "m", "", "manager whose format the file uses (dep, godep, vndr)")

	return cmd
}

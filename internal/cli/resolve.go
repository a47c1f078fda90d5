package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/deps/golang"
	"github.com/matzehuels/godepscan/pkg/errors"
	"github.com/matzehuels/godepscan/pkg/pipeline"
)

// resolveFlags holds flags shared by resolve and parse.
type resolveFlags struct {
	flush         bool
	ensure        bool
	ensureTimeout time.Duration
	refresh       bool
	noCache       bool
	strict        bool
	format        string
	output        string
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.flush, "flush-trailing-stanza", false, "keep a last Gopkg.lock stanza that has no trailing blank line")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().StringVarP(&f.format, "format", "f", formatTable, "output format: table or json")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write records to a file instead of stdout")
}

// apply overrides config-derived options with flags the user set.
func (f *resolveFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("flush-trailing-stanza") {
		opts.FlushTrailingStanza = f.flush
	}
	if flags.Changed("ensure") {
		opts.Ensure = f.ensure
	}
	if flags.Changed("ensure-timeout") {
		opts.EnsureTimeout = f.ensureTimeout
	}
	opts.Refresh = f.refresh
}

// writer returns the destination for records and a function that closes it.
func (f *resolveFlags) writer(cmd *cobra.Command) (io.Writer, func() error, error) {
	if f.output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(f.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return file, file.Close, nil
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve [manager] [dir]",
		Short: "List the dependencies pinned by a project's manifest",
		Long: `Resolve reads the manifest of the given dependency manager in dir
(default: the current directory) and prints one record per dependency.

Supported managers are dep (Gopkg.lock), godep (Godeps.json) and vndr
(vendor.conf). When the manager is omitted the config file's manager is used;
on a terminal without one, godepscan asks.

A missing or unreadable manifest is reported once and an empty list is
printed. Use --strict to exit with an error instead.`,
		Example: `  godepscan resolve dep ./myproject
  godepscan resolve godep -f json
  godepscan resolve vndr . -o deps.json -f json`,
		Args: cobra.MaximumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveFilterDirs
			}
			var names []string
			for _, m := range golang.Managers() {
				names = append(names, m.String())
			}
			return names, cobra.ShellCompDirectiveFilterDirs
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.ensure, "ensure", false, "run 'dep ensure' before reading Gopkg.lock")
	cmd.Flags().DurationVar(&flags.ensureTimeout, "ensure-timeout", golang.DefaultEnsureTimeout, "timeout for 'dep ensure'")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit with an error when the manifest cannot be read")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, args []string, flags *resolveFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	manager, dir, err := c.resolveTarget(args)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	if manager == "" {
		if manager, err = chooseManager(cmd, root); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := c.pipelineOptions(ctx)
	opts.Root = root
	opts.Manager = manager
	flags.apply(cmd, &opts)
	if opts.Ensure {
		opts.Ensurer = spinningEnsurer(cmd.ErrOrStderr(), golang.CommandEnsurer{Timeout: opts.EnsureTimeout})
	}

	prog := newProgress(logger)
	res, err := runner.Resolve(ctx, opts)
	if err != nil {
		if flags.strict {
			return err
		}
		logger.Warn(errors.UserMessage(err))
		res = &pipeline.Result{Manager: manager, Dependencies: []deps.Dependency{}}
	} else {
		prog.done(fmt.Sprintf("Resolved %d dependencies", len(res.Dependencies)))
	}

	w, closeOut, err := flags.writer(cmd)
	if err != nil {
		return err
	}
	if err := writeRecords(w, flags.format, res); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	if flags.output != "" {
		printSuccess(cmd.ErrOrStderr(), "Wrote %d dependencies to %s", len(res.Dependencies), flags.output)
	}
	return nil
}

// resolveTarget maps positional arguments to a manager and a directory.
// A single argument is taken as the manager when it names one, otherwise
// as the directory. The manager is "" when neither the arguments nor the
// config name one.
func (c *CLI) resolveTarget(args []string) (string, string, error) {
	manager, dir := c.Config.Manager, "."
	switch len(args) {
	case 2:
		manager, dir = args[0], args[1]
	case 1:
		if _, err := golang.ParseManager(args[0]); err == nil {
			manager = args[0]
		} else {
			dir = args[0]
		}
	}
	if manager == "" {
		return "", dir, nil
	}
	if _, err := golang.ParseManager(manager); err != nil {
		return "", "", err
	}
	return manager, dir, nil
}

// chooseManager asks the user for a manager on a terminal and fails
// otherwise.
func chooseManager(cmd *cobra.Command, root string) (string, error) {
	noManager := errors.New(errors.ErrCodeInvalidManager, "No valid dependency manager was defined")
	if !isInteractive() {
		return "", noManager
	}
	m, err := pickManager(cmd.ErrOrStderr(), root)
	if err != nil {
		return "", err
	}
	if m == "" {
		return "", noManager
	}
	return string(m), nil
}

package golang

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/errors"
	"github.com/matzehuels/godepscan/pkg/observability"
)

// Config controls a single resolution run.
type Config struct {
	deps.Options

	// Ensure, when set, is run in the project root before Gopkg.lock is
	// read so the lock reflects the current sources. Only used for Dep.
	Ensure Ensurer
}

// ManifestPath returns the manifest that Load reads for m under root.
func ManifestPath(root string, m Manager) string {
	if m == Godep {
		return godepsLocation(root)
	}
	return filepath.Join(root, m.Manifest())
}

// Load reads the manifest of manager m under root and returns its
// dependency records in file order.
//
// A missing manifest is reported as *errors.MissingManifestError, an I/O
// failure as UNREADABLE_FILE and an invalid Godeps.json as
// MALFORMED_DOCUMENT. A failing ensure step is only logged.
func Load(ctx context.Context, root string, m Manager, cfg Config) ([]deps.Dependency, error) {
	opts := cfg.Options.WithDefaults()

	parser, err := ParserFor(m)
	if err != nil {
		return nil, err
	}

	path := ManifestPath(root, m)
	if !isFile(path) {
		return nil, missing(m, path)
	}

	if m == Dep && cfg.Ensure != nil {
		if err := cfg.Ensure.Ensure(ctx, root); err != nil {
			opts.Logger("Can't run 'dep ensure' command, output might be outdated.  Run the 'dep ensure' command manually. (%v)", err)
		}
	}

	hooks := observability.Parse()
	hooks.OnParseStart(ctx, string(m), path)
	start := time.Now()

	res, err := parser.Parse(path, opts)

	count := 0
	if res != nil {
		count = len(res.Dependencies)
	}
	hooks.OnParseComplete(ctx, string(m), path, count, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return res.Dependencies, nil
}

// Collect is the resolution entry point for host pipelines: it never
// fails. Any error from Load, including an invalid manager, is reported
// through opts.Logger as exactly one message and an empty (non-nil) list
// is returned.
func Collect(ctx context.Context, root string, m Manager, cfg Config) []deps.Dependency {
	opts := cfg.Options.WithDefaults()
	cfg.Options = opts

	if m == "" {
		opts.Logger("%v", errors.New(errors.ErrCodeInvalidManager, "No valid dependency manager was defined"))
		return []deps.Dependency{}
	}

	records, err := Load(ctx, root, m, cfg)
	if err != nil {
		opts.Logger("%v", err)
		return []deps.Dependency{}
	}
	if records == nil {
		records = []deps.Dependency{}
	}
	return records
}

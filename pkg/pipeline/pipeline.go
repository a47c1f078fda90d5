// Package pipeline runs dependency collection with result caching.
//
// Both the CLI and the HTTP server go through a [Runner] so they share the
// same cache keys and logging:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Resolve(ctx, pipeline.Options{
//	    Root:    "/src/app",
//	    Manager: "dep",
//	})
//
// Parsed records are cached by manager, manifest content hash and the parse
// options that affect output, never by path.
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/godepscan/pkg/cache"
	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/deps/golang"
	"github.com/matzehuels/godepscan/pkg/errors"
)

// MaxManifestSize caps manifest bodies accepted by Parse.
const MaxManifestSize = 8 << 20

// Options configures a single Resolve or Parse call.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Resolve options
	Root    string `json:"root,omitempty"`
	Manager string `json:"manager,omitempty"`

	// Parse options
	Filename string `json:"filename,omitempty"`
	Content  []byte `json:"-"`

	FlushTrailingStanza bool          `json:"flush_trailing_stanza,omitempty"`
	Ensure              bool          `json:"-"`
	EnsureTimeout       time.Duration `json:"-"`
	Refresh             bool          `json:"refresh,omitempty"`
	CacheTTL            time.Duration `json:"-"`

	// Runtime options (not serialized)
	Logger  *log.Logger    `json:"-"`
	Ensurer golang.Ensurer `json:"-"`
}

// Result contains the outputs of a run.
type Result struct {
	Dependencies []deps.Dependency `json:"dependencies"`
	Manager      string            `json:"manager"`
	Path         string            `json:"path,omitempty"`
	ContentHash  string            `json:"content_hash,omitempty"`
	CacheHit     bool              `json:"cache_hit"`
	Duration     time.Duration     `json:"duration"`
}

// ValidateForResolve checks the fields Resolve needs.
func (o *Options) ValidateForResolve() error {
	if _, err := golang.ParseManager(o.Manager); err != nil {
		return err
	}
	if err := errors.ValidateRoot(o.Root, false); err != nil {
		return err
	}
	return nil
}

// ValidateForParse checks the fields Parse needs.
func (o *Options) ValidateForParse() error {
	if o.Filename == "" && o.Manager == "" {
		return errors.New(errors.ErrCodeInvalidInput, "filename or manager is required")
	}
	if o.Filename != "" {
		if err := errors.ValidateManifestFilename(o.Filename); err != nil {
			return err
		}
	}
	if len(o.Content) > MaxManifestSize {
		return errors.New(errors.ErrCodeInvalidInput, "manifest exceeds %d bytes", MaxManifestSize)
	}
	return nil
}

func (o *Options) depsOptions() deps.Options {
	opts := deps.Options{FlushTrailingStanza: o.FlushTrailingStanza}
	if o.Logger != nil {
		opts.Logger = o.Logger.Warnf
	}
	return opts.WithDefaults()
}

func (o *Options) ensurer() golang.Ensurer {
	if !o.Ensure {
		return nil
	}
	if o.Ensurer != nil {
		return o.Ensurer
	}
	return golang.CommandEnsurer{Timeout: o.EnsureTimeout}
}

func (o *Options) String() string {
	if o.Root != "" {
		return fmt.Sprintf("%s:%s", o.Manager, o.Root)
	}
	return fmt.Sprintf("%s:%s", o.Manager, o.Filename)
}

func (o *Options) keyOpts() cache.ManifestKeyOpts {
	return cache.ManifestKeyOpts{FlushTrailingStanza: o.FlushTrailingStanza}
}

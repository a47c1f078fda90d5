package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/godepscan/pkg/cache"
	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/deps/golang"
	"github.com/matzehuels/godepscan/pkg/errors"
	"github.com/matzehuels/godepscan/pkg/observability"
)

const cacheKeyType = "manifest"

// readerParser is implemented by every parser in pkg/deps/golang.
type readerParser interface {
	deps.ManifestParser
	ParseReader(r io.Reader, opts deps.Options) ([]deps.Dependency, error)
}

// Runner executes resolution with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Resolve reads the manifest of opts.Manager under opts.Root.
//
// Errors are those of golang.Load. When the ensure step is enabled the
// cache is bypassed, since the lock may change before it is read.
// Otherwise the manifest is read once and the same bytes are hashed for
// the cache key and parsed.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForResolve(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	m, _ := golang.ParseManager(opts.Manager)
	path := golang.ManifestPath(opts.Root, m)
	cfg := golang.Config{Options: opts.depsOptions(), Ensure: opts.ensurer()}
	start := time.Now()

	result := &Result{Manager: string(m), Path: path}

	data, readErr := os.ReadFile(path)
	if readErr != nil || cfg.Ensure != nil {
		// Load reports the missing or unreadable manifest, or runs ensure
		// before reading.
		records, err := golang.Load(ctx, opts.Root, m, cfg)
		if err != nil {
			return nil, err
		}
		return r.resolved(result, records, start), nil
	}

	result.ContentHash = cache.Hash(data)
	key := r.Keyer.ManifestKey(string(m), result.ContentHash, opts.keyOpts())
	if !opts.Refresh {
		if records, ok := r.lookup(ctx, key); ok {
			result.Dependencies = withSource(records, path)
			result.CacheHit = true
			result.Duration = time.Since(start)
			r.logHit(opts, len(records))
			return result, nil
		}
	}

	parser, err := golang.ParserFor(m)
	if err != nil {
		return nil, err
	}
	rp, ok := parser.(readerParser)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s parser cannot read from a stream", parser.Type())
	}
	records, err := r.parseContent(ctx, rp, path, data, opts)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, records, opts.CacheTTL)
	return r.resolved(result, withSource(records, path), start), nil
}

func (r *Runner) resolved(result *Result, records []deps.Dependency, start time.Time) *Result {
	result.Dependencies = records
	result.Duration = time.Since(start)
	r.Logger.Info("resolved dependencies",
		"manager", result.Manager,
		"path", result.Path,
		"records", len(records),
		"duration", result.Duration)
	return result
}

// logHit notes that warnings emitted while the cached records were first
// parsed are not emitted again.
func (r *Runner) logHit(opts Options, n int) {
	r.Logger.Debug("cache hit, parse warnings from the first read are not repeated",
		"target", opts.String(), "records", n)
}

// Collect is Resolve with golang.Collect semantics: any failure is logged
// once and an empty list is returned.
func (r *Runner) Collect(ctx context.Context, opts Options) []deps.Dependency {
	r.applyLogger(&opts)
	res, err := r.Resolve(ctx, opts)
	if err != nil {
		opts.Logger.Warn(errors.UserMessage(err))
		return []deps.Dependency{}
	}
	return res.Dependencies
}

// Parse reads manifest content supplied in opts.Content. The parser is
// chosen by opts.Manager when set, otherwise by opts.Filename.
func (r *Runner) Parse(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	parser, err := r.parserFor(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{Manager: parser.Type(), ContentHash: cache.Hash(opts.Content)}
	key := r.Keyer.ManifestKey(parser.Type(), result.ContentHash, opts.keyOpts())

	if !opts.Refresh {
		if records, ok := r.lookup(ctx, key); ok {
			result.Dependencies = records
			result.CacheHit = true
			result.Duration = time.Since(start)
			r.logHit(opts, len(records))
			return result, nil
		}
	}

	name := opts.Filename
	if name == "" {
		name = parser.Type()
	}
	records, err := r.parseContent(ctx, parser, name, opts.Content, opts)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, records, opts.CacheTTL)

	result.Dependencies = records
	result.Duration = time.Since(start)
	return result, nil
}

// ParseFile reads the manifest at path and parses it like Parse. The
// parser is detected from the file name unless opts.Manager is set.
func (r *Runner) ParseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeManifestNotFound, "Can't find %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeUnreadableFile, err, "Can't read %s", path)
	}
	opts.Filename = filepath.Base(path)
	opts.Content = data

	res, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Path = path
	res.Dependencies = withSource(res.Dependencies, path)
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// parseContent parses data with p, firing the parse hooks under name.
func (r *Runner) parseContent(ctx context.Context, p readerParser, name string, data []byte, opts Options) ([]deps.Dependency, error) {
	hooks := observability.Parse()
	hooks.OnParseStart(ctx, p.Type(), name)
	start := time.Now()
	records, err := p.ParseReader(bytes.NewReader(data), opts.depsOptions())
	hooks.OnParseComplete(ctx, p.Type(), name, len(records), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []deps.Dependency{}
	}
	return records, nil
}

func (r *Runner) parserFor(opts Options) (readerParser, error) {
	var (
		p  deps.ManifestParser
		ok bool
	)
	if opts.Manager != "" {
		m, err := golang.ParseManager(opts.Manager)
		if err != nil {
			return nil, err
		}
		p, ok = golang.Language.Manifest(string(m))
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "no parser for manager %s", m)
		}
	} else {
		var err error
		if p, err = golang.Language.Detect(opts.Filename); err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "Can't parse %s", opts.Filename)
		}
	}
	rp, ok := p.(readerParser)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s parser cannot read from a stream", p.Type())
	}
	return rp, nil
}

func (r *Runner) lookup(ctx context.Context, key string) ([]deps.Dependency, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	var records []deps.Dependency
	if err := json.Unmarshal(data, &records); err != nil {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return records, true
}

func (r *Runner) store(ctx context.Context, key string, records []deps.Dependency, ttl time.Duration) {
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	data, err := json.Marshal(withSource(records, ""))
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// withSource returns a copy of records with Source set to path.
func withSource(records []deps.Dependency, path string) []deps.Dependency {
	out := make([]deps.Dependency, len(records))
	for i, d := range records {
		d.Source = path
		out[i] = d
	}
	return out
}

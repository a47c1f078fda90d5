package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/godepscan/pkg/cache"
	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/deps/golang"
	"github.com/matzehuels/godepscan/pkg/errors"
)

const lockContent = `[[projects]]
  name = "github.com/pkg/errors"
  packages = ["."]
  revision = "645ef00459ed84a119197bfb8d8205042c6df63d"
  version = "v0.8.0"

[[projects]]
  name = "golang.org/x/net"
  packages = ["context"]
  revision = "f5079bd7f6f74e23c4d65efa0f4ce14cbd6a3c0f"

`

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestRunner(t *testing.T) (*Runner, *cache.FileCache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, quietLogger()), c
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, ok := r.Cache.(*cache.NullCache); !ok {
		t.Errorf("Cache = %T, want *cache.NullCache", r.Cache)
	}
	if _, ok := r.Keyer.(cache.DefaultKeyer); !ok {
		t.Errorf("Keyer = %T, want cache.DefaultKeyer", r.Keyer)
	}
	if r.Logger == nil {
		t.Error("Logger should default to log.Default()")
	}
}

func TestValidateForResolve(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"ok", Options{Root: "/src/app", Manager: "dep"}, ""},
		{"alias", Options{Root: "/src/app", Manager: "vendor"}, ""},
		{"no manager", Options{Root: "/src/app"}, errors.ErrCodeInvalidManager},
		{"bad manager", Options{Root: "/src/app", Manager: "glide"}, errors.ErrCodeInvalidManager},
		{"no root", Options{Manager: "dep"}, errors.ErrCodeInvalidPath},
		{"traversal", Options{Root: "../../etc", Manager: "dep"}, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForResolve()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateForParse(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"filename", Options{Filename: "Gopkg.lock"}, false},
		{"manager", Options{Manager: "vndr"}, false},
		{"neither", Options{}, true},
		{"path in filename", Options{Filename: "../Gopkg.lock"}, true},
		{"too large", Options{Manager: "dep", Content: make([]byte, MaxManifestSize+1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForParse()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForParse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunnerResolve(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	dir := t.TempDir()
	path := writeManifest(t, dir, golang.GopkgLockName, lockContent)

	first, err := r.Resolve(ctx, Options{Root: dir, Manager: "dep"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.CacheHit {
		t.Error("first Resolve should miss the cache")
	}
	if len(first.Dependencies) != 3 {
		t.Fatalf("got %d records, want 3", len(first.Dependencies))
	}
	if first.Path != path || first.Manager != "dep" {
		t.Errorf("Path/Manager = %q/%q", first.Path, first.Manager)
	}

	second, err := r.Resolve(ctx, Options{Root: dir, Manager: "dep"})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second Resolve should hit the cache")
	}
	for i := range first.Dependencies {
		if first.Dependencies[i] != second.Dependencies[i] {
			t.Errorf("record %d differs: %+v vs %+v", i, first.Dependencies[i], second.Dependencies[i])
		}
	}

	refreshed, err := r.Resolve(ctx, Options{Root: dir, Manager: "dep", Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerResolveCacheKeyedByContent(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)

	a, b := t.TempDir(), t.TempDir()
	writeManifest(t, a, golang.GopkgLockName, lockContent)
	pathB := writeManifest(t, b, golang.GopkgLockName, lockContent)

	if _, err := r.Resolve(ctx, Options{Root: a, Manager: "dep"}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(ctx, Options{Root: b, Manager: "dep"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit {
		t.Error("identical content in another root should hit the cache")
	}
	for _, d := range res.Dependencies {
		if d.Source != pathB {
			t.Errorf("Source = %q, want %q", d.Source, pathB)
		}
	}

	flushed, err := r.Resolve(ctx, Options{Root: b, Manager: "dep", FlushTrailingStanza: true})
	if err != nil {
		t.Fatal(err)
	}
	if flushed.CacheHit {
		t.Error("different parse options should miss the cache")
	}
}

func TestRunnerResolveEnsureBypassesCache(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	dir := t.TempDir()
	writeManifest(t, dir, golang.GopkgLockName, lockContent)

	calls := 0
	opts := Options{
		Root:    dir,
		Manager: "dep",
		Ensure:  true,
		Ensurer: golang.EnsureFunc(func(context.Context, string) error {
			calls++
			return nil
		}),
	}
	for i := 0; i < 2; i++ {
		res, err := r.Resolve(ctx, opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheHit {
			t.Error("ensure runs should not be served from cache")
		}
	}
	if calls != 2 {
		t.Errorf("ensure ran %d times, want 2", calls)
	}
}

func TestRunnerResolveMissing(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Resolve(context.Background(), Options{Root: t.TempDir(), Manager: "vndr"})
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Fatalf("err = %v, want MANIFEST_NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "vndr init") {
		t.Errorf("error %q should name the remediation", err.Error())
	}
}

func TestRunnerResolveCachesReadContent(t *testing.T) {
	ctx := context.Background()
	r, c := newTestRunner(t)
	dir := t.TempDir()
	path := writeManifest(t, dir, golang.VendorConfName, "github.com/a/b r1\n")

	opts := Options{Root: dir, Manager: "vndr"}
	res, err := r.Resolve(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if want := cache.Hash([]byte("github.com/a/b r1\n")); res.ContentHash != want {
		t.Errorf("ContentHash = %q, want %q", res.ContentHash, want)
	}
	if len(res.Dependencies) != 1 || res.Dependencies[0].Source != path {
		t.Fatalf("Dependencies = %+v", res.Dependencies)
	}

	data, hit, err := c.Get(ctx, r.Keyer.ManifestKey("vndr", res.ContentHash, opts.keyOpts()))
	if err != nil || !hit {
		t.Fatalf("entry under content hash: hit=%v err=%v", hit, err)
	}
	var stored []deps.Dependency
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Name != "github.com/a/b" || stored[0].Revision != "r1" {
		t.Errorf("stored = %+v", stored)
	}

	writeManifest(t, dir, golang.VendorConfName, "github.com/a/b r2\ngithub.com/c/d r3\n")
	res, err = r.Resolve(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("edited manifest should miss the cache")
	}
	if len(res.Dependencies) != 2 || res.Dependencies[0].Revision != "r2" {
		t.Errorf("Dependencies = %+v", res.Dependencies)
	}
}

func TestRunnerResolveCacheHitNotesWarnings(t *testing.T) {
	ctx := context.Background()
	var buf strings.Builder
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	dir := t.TempDir()
	writeManifest(t, dir, golang.GopkgLockName, strings.TrimRight(lockContent, "\n")+"\n")

	if _, err := r.Resolve(ctx, Options{Root: dir, Manager: "dep"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "dropping unterminated stanza") {
		t.Fatalf("first run should warn about the trailing stanza:\n%s", buf.String())
	}

	buf.Reset()
	res, err := r.Resolve(ctx, Options{Root: dir, Manager: "dep"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit {
		t.Fatal("second Resolve should hit the cache")
	}
	out := buf.String()
	if strings.Contains(out, "dropping unterminated stanza") {
		t.Errorf("cache hit should not re-run the parser:\n%s", out)
	}
	if !strings.Contains(out, "parse warnings from the first read are not repeated") {
		t.Errorf("cache hit should say warnings are not repeated:\n%s", out)
	}
}

func TestRunnerCollect(t *testing.T) {
	var buf strings.Builder
	logger := log.New(&buf)
	r := NewRunner(nil, nil, logger)

	got := r.Collect(context.Background(), Options{Root: t.TempDir(), Manager: "godep"})
	if got == nil || len(got) != 0 {
		t.Errorf("Collect() = %#v, want empty non-nil slice", got)
	}
	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Errorf("logged %d lines, want 1:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "Can't find Godeps.json file.") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestRunnerParse(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)

	tests := []struct {
		name    string
		opts    Options
		manager string
		count   int
	}{
		{"by filename", Options{Filename: "Gopkg.lock", Content: []byte(lockContent)}, "dep", 3},
		{"by manager", Options{Manager: "vndr", Content: []byte("github.com/a/b r1\n")}, "vndr", 1},
		{"by manifest alias", Options{Manager: "godeps", Content: []byte(`{"Deps": []}`)}, "godep", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Parse(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if res.Manager != tt.manager {
				t.Errorf("Manager = %q, want %q", res.Manager, tt.manager)
			}
			if len(res.Dependencies) != tt.count {
				t.Errorf("got %d records, want %d", len(res.Dependencies), tt.count)
			}
			if res.Dependencies == nil {
				t.Error("Dependencies should be non-nil")
			}
		})
	}
}

func TestRunnerParseErrors(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	_, err := r.Parse(ctx, Options{Filename: "go.mod", Content: []byte("module x")})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("go.mod: err = %v, want UNSUPPORTED", err)
	}

	_, err = r.Parse(ctx, Options{Filename: "Godeps.json", Content: []byte("{")})
	if !errors.Is(err, errors.ErrCodeMalformedDocument) {
		t.Errorf("bad json: err = %v, want MALFORMED_DOCUMENT", err)
	}
}

func TestRunnerParseFile(t *testing.T) {
	r, _ := newTestRunner(t)
	path := writeManifest(t, t.TempDir(), golang.VendorConfName, "github.com/a/b r1\ngithub.com/c/d r2\n")

	res, err := r.ParseFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != path || res.Manager != "vndr" {
		t.Errorf("Path/Manager = %q/%q", res.Path, res.Manager)
	}
	want := []deps.Dependency{
		{Namespace: "a", Name: "github.com/a/b", Revision: "r1", Ecosystem: deps.EcosystemGo, Manager: "vndr", Source: path},
		{Namespace: "c", Name: "github.com/c/d", Revision: "r2", Ecosystem: deps.EcosystemGo, Manager: "vndr", Source: path},
	}
	for i := range want {
		if res.Dependencies[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, res.Dependencies[i], want[i])
		}
	}

	_, err = r.ParseFile(context.Background(), filepath.Join(t.TempDir(), "vendor.conf"), Options{})
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("missing file: err = %v, want MANIFEST_NOT_FOUND", err)
	}
}

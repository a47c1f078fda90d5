package golang

import (
	"io"
	"os"
	"strings"

	"github.com/matzehuels/godepscan/pkg/deps"
)

const (
	projectsMarker = "[[projects]]"
	nameKey        = "name = "
	versionKey     = "version = "
	revisionKey    = "revision = "
	packagesKey    = "packages = "
	closeBracket   = "]"
	rootPackage    = "."
)

// GopkgLock parses the Gopkg.lock file written by dep. It reads the file
// line by line rather than as TOML: only [[projects]] stanzas terminated by
// a blank line are recognized, matching how the lock has always been read.
type GopkgLock struct{}

func (p *GopkgLock) Type() string              { return string(Dep) }
func (p *GopkgLock) Supports(name string) bool { return name == GopkgLockName }

func (p *GopkgLock) Parse(path string, opts deps.Options) (*deps.ManifestResult, error) {
	opts = opts.WithDefaults()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missing(Dep, path)
		}
		return nil, unreadable(path, err)
	}
	defer f.Close()

	raws, err := readGopkgLock(f, opts)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return &deps.ManifestResult{
		Dependencies: deps.AssembleAll(raws, deps.Source{Manager: p.Type(), Path: path}),
		Type:         p.Type(),
		Path:         path,
	}, nil
}

// ParseReader parses Gopkg.lock content from r.
func (p *GopkgLock) ParseReader(r io.Reader, opts deps.Options) ([]deps.Dependency, error) {
	raws, err := readGopkgLock(r, opts.WithDefaults())
	if err != nil {
		return nil, err
	}
	return deps.AssembleAll(raws, deps.Source{Manager: p.Type()}), nil
}

type lockState int

const (
	outside lockState = iota
	inProject
	inPackages
)

func (s lockState) String() string {
	switch s {
	case inProject:
		return "project"
	case inPackages:
		return "packages"
	default:
		return "outside"
	}
}

// lockReader is the line-driven state machine over a Gopkg.lock.
type lockReader struct {
	state   lockState
	block   deps.Raw
	flushed []deps.Raw
}

// step consumes one line and advances the state machine.
func (r *lockReader) step(line string) {
	switch r.state {
	case outside:
		if line == projectsMarker {
			r.block = deps.Raw{}
			r.state = inProject
		}

	case inPackages:
		if line == "" {
			r.flush()
			return
		}
		if strings.Contains(line, closeBracket) {
			r.state = inProject
			return
		}
		if v, ok := quoted(line); ok && v != rootPackage {
			r.block.Packages = append(r.block.Packages, v)
		}

	case inProject:
		switch {
		case line == "":
			r.flush()
		case strings.Contains(line, nameKey):
			if v, ok := quoted(line); ok {
				r.block.Identity = v
			}
		case strings.Contains(line, versionKey):
			if v, ok := quoted(line); ok {
				r.block.Version = v
			}
		case strings.Contains(line, revisionKey):
			if v, ok := quoted(line); ok {
				r.block.Revision = v
			}
		case strings.Contains(line, packagesKey):
			if strings.Contains(line, closeBracket) {
				r.block.Packages = inlineList(line)
				return
			}
			r.block.Packages = nil
			r.state = inPackages
		}
	}
}

func (r *lockReader) flush() {
	r.flushed = append(r.flushed, r.block)
	r.block = deps.Raw{}
	r.state = outside
}

// open reports whether a stanza was started but never terminated.
func (r *lockReader) open() bool {
	return r.state != outside
}

func readGopkgLock(rd io.Reader, opts deps.Options) ([]deps.Raw, error) {
	var r lockReader
	lines := deps.Lines(rd)
	for _, line := range lines.All() {
		r.step(line)
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}

	if r.open() {
		if opts.FlushTrailingStanza {
			opts.Logger("Gopkg.lock: flushing unterminated stanza %q", r.block.Identity)
			r.flush()
		} else {
			opts.Logger("Gopkg.lock: dropping unterminated stanza %q (no trailing blank line)", r.block.Identity)
		}
	}

	raws := r.flushed[:0]
	for _, raw := range r.flushed {
		if raw.Identity == "" {
			opts.Logger("Gopkg.lock: skipping [[projects]] stanza without a name")
			continue
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// quoted returns the text between the first and last double quote on line.
func quoted(line string) (string, bool) {
	first := strings.Index(line, `"`)
	last := strings.LastIndex(line, `"`)
	if first < 0 || last <= first {
		return "", false
	}
	return line[first+1 : last], true
}

// inlineList returns the quoted literals of a one-line array such as
// `packages = ["bar", "baz"]`, skipping the root package.
func inlineList(line string) []string {
	var out []string
	for i, part := range strings.Split(line, `"`) {
		if i%2 == 1 && part != rootPackage {
			out = append(out, part)
		}
	}
	return out
}

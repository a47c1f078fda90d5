package golang

import (
	"io"
	"os"
	"strings"

	"github.com/matzehuels/godepscan/pkg/deps"
)

// VendorConf parses the vendor.conf file used by vndr. Each line holds
// "<import path> <revision> [repository]" separated by spaces or tabs;
// fields after the revision are ignored.
type VendorConf struct{}

func (p *VendorConf) Type() string              { return string(Vndr) }
func (p *VendorConf) Supports(name string) bool { return name == VendorConfName }

func (p *VendorConf) Parse(path string, opts deps.Options) (*deps.ManifestResult, error) {
	opts = opts.WithDefaults()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missing(Vndr, path)
		}
		return nil, unreadable(path, err)
	}
	defer f.Close()

	raws, err := readVendorConf(f, opts)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return &deps.ManifestResult{
		Dependencies: deps.AssembleAll(raws, deps.Source{Manager: p.Type(), Path: path}),
		Type:         p.Type(),
		Path:         path,
	}, nil
}

// ParseReader parses vendor.conf content from r.
func (p *VendorConf) ParseReader(r io.Reader, opts deps.Options) ([]deps.Dependency, error) {
	raws, err := readVendorConf(r, opts.WithDefaults())
	if err != nil {
		return nil, err
	}
	return deps.AssembleAll(raws, deps.Source{Manager: p.Type()}), nil
}

func readVendorConf(r io.Reader, opts deps.Options) ([]deps.Raw, error) {
	var raws []deps.Raw
	lines := deps.Lines(r)
	for n, line := range lines.All() {
		raw, ok := parseVendorLine(line)
		if !ok {
			opts.Logger("vendor.conf:%d: skipping malformed line %q (want \"<import path> <revision>\")", n, line)
			continue
		}
		if raw.Identity == "" {
			continue
		}
		raws = append(raws, raw)
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return raws, nil
}

// parseVendorLine splits a vendor.conf line on runs of whitespace, so
// column-aligned files read the same as single-spaced ones. Blank and
// comment lines yield an empty record; lines with fewer than two fields
// are malformed.
func parseVendorLine(line string) (deps.Raw, bool) {
	if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return deps.Raw{}, true
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return deps.Raw{}, false
	}
	return deps.Raw{Identity: fields[0], Revision: fields[1]}, true
}

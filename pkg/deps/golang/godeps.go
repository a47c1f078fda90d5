package golang

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/errors"
)

// GodepsJSON parses the Godeps.json descriptor written by godep.
type GodepsJSON struct{}

func (p *GodepsJSON) Type() string              { return string(Godep) }
func (p *GodepsJSON) Supports(name string) bool { return name == GodepsJSONName }

func (p *GodepsJSON) Parse(path string, opts deps.Options) (*deps.ManifestResult, error) {
	opts = opts.WithDefaults()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missing(Godep, path)
		}
		return nil, unreadable(path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, unreadable(path, err)
	}
	raws, err := readGodeps(data, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "Can't parse %s", path)
	}
	return &deps.ManifestResult{
		Dependencies: deps.AssembleAll(raws, deps.Source{Manager: p.Type(), Path: path}),
		Type:         p.Type(),
		Path:         path,
	}, nil
}

// ParseReader parses Godeps.json content from r.
func (p *GodepsJSON) ParseReader(r io.Reader, opts deps.Options) ([]deps.Dependency, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raws, err := readGodeps(data, opts.WithDefaults())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "Can't parse %s", GodepsJSONName)
	}
	return deps.AssembleAll(raws, deps.Source{Manager: p.Type()}), nil
}

// godepsLocation returns the Godeps.json to read under root. godep itself
// writes Godeps/Godeps.json; the root-level file wins when both exist.
func godepsLocation(root string) string {
	top := filepath.Join(root, GodepsJSONName)
	if isFile(top) {
		return top
	}
	nested := filepath.Join(root, "Godeps", GodepsJSONName)
	if isFile(nested) {
		return nested
	}
	return top
}

type godepsFile struct {
	ImportPath string        `json:"ImportPath"`
	Deps       []godepsEntry `json:"Deps"`
}

type godepsEntry struct {
	ImportPath string  `json:"ImportPath"`
	Rev        string  `json:"Rev"`
	Comment    *string `json:"Comment"`
}

func readGodeps(data []byte, opts deps.Options) ([]deps.Raw, error) {
	var top json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if t := bytes.TrimSpace(top); len(t) == 0 || t[0] != '{' {
		opts.Logger("Godeps.json: top-level value is not an object, no dependencies read")
		return nil, nil
	}

	var doc godepsFile
	if err := json.Unmarshal(top, &doc); err != nil {
		return nil, err
	}

	raws := make([]deps.Raw, 0, len(doc.Deps))
	for i, d := range doc.Deps {
		if d.ImportPath == "" {
			opts.Logger("Godeps.json: skipping Deps[%d] without ImportPath", i)
			continue
		}
		raw := deps.Raw{Identity: d.ImportPath, Revision: d.Rev}
		if d.Comment != nil {
			raw.Version = commentVersion(*d.Comment)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// commentVersion keeps the part of a godep comment before the first hyphen:
// "v2.3-5-gabc" (git describe output) becomes "v2.3".
func commentVersion(comment string) string {
	if i := strings.Index(comment, "-"); i >= 0 {
		return comment[:i]
	}
	return comment
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

package deps

import (
	"fmt"
	"path/filepath"
)

// ManifestParser reads dependency records from a local manifest file.
type ManifestParser interface {
	// Parse reads the manifest at path and returns its dependency records.
	Parse(path string, opts Options) (*ManifestResult, error)
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Type returns the manifest type identifier (e.g., "dep", "vndr").
	Type() string
}

// ManifestResult holds the parsed dependency data from a manifest file.
type ManifestResult struct {
	Dependencies []Dependency // Records in file order
	Type         string       // Parser type that produced this result
	Path         string       // Manifest that was read
}

// DetectManifest finds a parser that supports the given file path.
// Returns an error if no parser matches.
func DetectManifest(path string, parsers ...ManifestParser) (ManifestParser, error) {
	name := filepath.Base(path)
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported manifest: %s", name)
}

package deps

import (
	"fmt"
	"strings"
)

// Language describes an ecosystem and the manifest formats it can read.
type Language struct {
	Name            string
	Ecosystem       Ecosystem
	ManifestTypes   []string
	ManifestAliases map[string]string
	NewManifest     func(name string) ManifestParser
	ManifestParsers func() []ManifestParser
}

// Manifest returns the parser registered under name (or one of its aliases).
func (l *Language) Manifest(name string) (ManifestParser, bool) {
	if l.NewManifest == nil {
		return nil, false
	}
	p := l.NewManifest(l.alias(l.ManifestAliases, strings.ToLower(name)))
	return p, p != nil
}

// Detect picks the parser for path by its basename.
func (l *Language) Detect(path string) (ManifestParser, error) {
	if !l.HasManifests() {
		return nil, fmt.Errorf("%s: no manifest parsers", l.Name)
	}
	p, err := DetectManifest(path, l.ManifestParsers()...)
	if err != nil {
		return nil, fmt.Errorf("%w (supported: %s)", err, strings.Join(l.ManifestTypes, ", "))
	}
	return p, nil
}

func (l *Language) HasManifests() bool {
	return l.NewManifest != nil && l.ManifestParsers != nil
}

func (l *Language) alias(m map[string]string, name string) string {
	if v, ok := m[name]; ok {
		return v
	}
	return name
}

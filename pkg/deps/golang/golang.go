// Package golang collects dependencies from the manifests of the legacy Go
// dependency managers: dep (Gopkg.lock), godep (Godeps.json) and vndr
// (vendor.conf).
//
// Use [Load] when errors matter and [Collect] when the caller only wants
// records and a log line on failure.
package golang

import "github.com/matzehuels/godepscan/pkg/deps"

// Language exposes the Go manifest parsers by manager name or manifest
// filename.
var Language = &deps.Language{
	Name:          "go",
	Ecosystem:     deps.EcosystemGo,
	ManifestTypes: []string{string(Dep), string(Godep), string(Vndr)},
	ManifestAliases: map[string]string{
		"gopkg.lock":  string(Dep),
		"godeps.json": string(Godep),
		"vendor.conf": string(Vndr),
	},
	NewManifest:     newManifest,
	ManifestParsers: ManifestParsers,
}

func newManifest(name string) deps.ManifestParser {
	m, err := ParseManager(name)
	if err != nil {
		return nil
	}
	p, err := ParserFor(m)
	if err != nil {
		return nil
	}
	return p
}

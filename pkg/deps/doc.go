// Package deps holds the manifest-neutral pieces of dependency collection:
// the normalized [Dependency] record, the [ManifestParser] contract and the
// helpers every parser shares.
//
// # Records
//
// Parsers read a manifest into [Raw] records and hand them to
// [AssembleAll], which expands sub-packages ([Expand]) and derives the
// namespace of each identity ([Namespace]). Record order follows the
// manifest, parent before children.
//
// The namespace is the second slash-separated segment of the identity:
//
//	github.com/pkg/errors     -> pkg
//	golang.org/x/net/context  -> x
//	localpkg                  -> ""
//
// # Parsers
//
// A [ManifestParser] recognizes a manifest by basename and parses it:
//
//	parser, err := deps.DetectManifest("Gopkg.lock", golang.ManifestParsers()...)
//	result, err := parser.Parse(path, deps.Options{Logger: log.Printf})
//
// Line-oriented formats iterate with [Lines]. Parsers never write to
// stdout; diagnostics go through [Options].Logger.
//
// # Languages
//
// A [Language] bundles the parsers of one ecosystem so callers can select
// a manifest by type name or alias. The Go definition lives in
// [golang].
//
// [golang]: github.com/matzehuels/godepscan/pkg/deps/golang
package deps

package deps

import "strings"

// Namespace derives the grouping key of an identity: the second
// slash-separated segment ("example.com/foo/bar" -> "foo"), or "" when the
// identity has no slash.
//
// This is not an import-path parser. Downstream consumers group on exactly
// this value, so every parser must go through it.
func Namespace(name string) string {
	if !strings.Contains(name, "/") {
		return ""
	}
	parts := strings.Split(name, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Raw is a dependency as read from a manifest, before normalization.
type Raw struct {
	Identity string
	Version  string
	Revision string
	Packages []string // Sub-package suffixes relative to Identity
}

// Expand fans a raw record out into itself plus one record per sub-package.
// Sub-packages inherit the parent's version and revision; the "." suffix
// names the root package and is skipped.
func Expand(r Raw) []Raw {
	out := make([]Raw, 0, 1+len(r.Packages))
	out = append(out, Raw{Identity: r.Identity, Version: r.Version, Revision: r.Revision})
	for _, pkg := range r.Packages {
		if pkg == "." {
			continue
		}
		out = append(out, Raw{
			Identity: r.Identity + "/" + pkg,
			Version:  r.Version,
			Revision: r.Revision,
		})
	}
	return out
}

package deps

// Source describes where a batch of raw records came from.
type Source struct {
	Manager string // Parser type, e.g. "dep"
	Path    string // Manifest path
}

// Assemble converts a raw record into its final Dependency shape.
func Assemble(r Raw, src Source) Dependency {
	return Dependency{
		Namespace: Namespace(r.Identity),
		Name:      r.Identity,
		Version:   r.Version,
		Revision:  r.Revision,
		Ecosystem: EcosystemGo,
		Manager:   src.Manager,
		Source:    src.Path,
	}
}

// AssembleAll expands every raw record (see Expand) and assembles the
// results, preserving order.
func AssembleAll(raws []Raw, src Source) []Dependency {
	out := make([]Dependency, 0, len(raws))
	for _, r := range raws {
		for _, e := range Expand(r) {
			out = append(out, Assemble(e, src))
		}
	}
	return out
}

package deps

// Ecosystem identifies the package ecosystem a dependency belongs to.
type Ecosystem string

// EcosystemGo is the only ecosystem produced by the parsers in this module.
const EcosystemGo Ecosystem = "go"

// Options configures manifest parsing behavior.
type Options struct {
	// FlushTrailingStanza emits the last [[projects]] stanza of a Gopkg.lock
	// that is not followed by a blank line. Off by default: such a stanza
	// has always been dropped and downstream consumers may compensate for it.
	FlushTrailingStanza bool

	Logger func(string, ...any) // Diagnostic callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Dependency is a single normalized dependency record.
type Dependency struct {
	Namespace string    `json:"namespace"`          // Second path segment of Name, or ""
	Name      string    `json:"name"`               // Raw identity (import path)
	Version   string    `json:"version,omitempty"`  // Declared version, if any
	Revision  string    `json:"revision,omitempty"` // VCS commit/revision, if any
	Ecosystem Ecosystem `json:"ecosystem"`
	Manager   string    `json:"manager,omitempty"` // Parser type that produced the record
	Source    string    `json:"source,omitempty"`  // Manifest path the record was read from
}

// String returns "name@version", falling back to the revision when no
// version was declared.
func (d Dependency) String() string {
	switch {
	case d.Version != "":
		return d.Name + "@" + d.Version
	case d.Revision != "":
		return d.Name + "@" + d.Revision
	default:
		return d.Name
	}
}

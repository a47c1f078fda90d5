package golang

import (
	"strings"

	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/errors"
)

// Manager selects which legacy dependency manager's manifest to read.
type Manager string

const (
	Dep   Manager = "dep"   // Gopkg.lock
	Godep Manager = "godep" // Godeps.json
	Vndr  Manager = "vndr"  // vendor.conf
)

const (
	GopkgLockName  = "Gopkg.lock"
	GodepsJSONName = "Godeps.json"
	VendorConfName = "vendor.conf"

	globPattern = "**/*"
	goExtension = ".go"
)

// SourceExtensions lists the file extensions that belong to a Go project
// managed by one of the supported tools.
var SourceExtensions = []string{".lock", ".json", goExtension}

var managerAliases = map[string]Manager{
	"dep":    Dep,
	"gopkg":  Dep,
	"godep":  Godep,
	"go-dep": Godep,
	"go_dep": Godep,
	"godeps": Godep,
	"vndr":   Vndr,
	"vendor": Vndr,
}

// Managers returns every supported manager in a stable order.
func Managers() []Manager {
	return []Manager{Dep, Godep, Vndr}
}

// ParseManager resolves a user-supplied manager name (case-insensitive,
// aliases allowed) to a Manager.
func ParseManager(name string) (Manager, error) {
	if name == "" {
		return "", errors.New(errors.ErrCodeInvalidManager, "No valid dependency manager was defined")
	}
	if m, ok := managerAliases[strings.ToLower(name)]; ok {
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidManager,
		"The selected dependency manager - %s - is not supported. (available: %s)", name, managerList())
}

// Manifest returns the basename of the file the manager writes.
func (m Manager) Manifest() string {
	switch m {
	case Dep:
		return GopkgLockName
	case Godep:
		return GodepsJSONName
	case Vndr:
		return VendorConfName
	default:
		return ""
	}
}

// Remediation returns the command that generates the manager's manifest.
func (m Manager) Remediation() string {
	switch m {
	case Dep:
		return "dep init"
	case Godep:
		return "godep save"
	case Vndr:
		return "vndr init"
	default:
		return ""
	}
}

// Pattern returns the glob that locates the manager's manifest anywhere
// below a project root, or "" for an unknown manager.
func (m Manager) Pattern() string {
	if name := m.Manifest(); name != "" {
		return globPattern + name
	}
	return ""
}

// Excludes returns the globs a host scan should skip. Go sources are
// excluded when ignoreSources is set.
func Excludes(ignoreSources bool) []string {
	if ignoreSources {
		return []string{globPattern + goExtension}
	}
	return nil
}

// Valid reports whether m is one of the supported managers.
func (m Manager) Valid() bool {
	return m.Manifest() != ""
}

func (m Manager) String() string { return string(m) }

// ParserFor returns the manifest parser for m.
func ParserFor(m Manager) (deps.ManifestParser, error) {
	switch m {
	case Dep:
		return &GopkgLock{}, nil
	case Godep:
		return &GodepsJSON{}, nil
	case Vndr:
		return &VendorConf{}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported,
			"The selected dependency manager - %s - is not supported.", m)
	}
}

// ManifestParsers returns a parser for every supported manager, for use
// with deps.DetectManifest.
func ManifestParsers() []deps.ManifestParser {
	return []deps.ManifestParser{&GopkgLock{}, &GodepsJSON{}, &VendorConf{}}
}

func managerList() string {
	names := make([]string, 0, len(Managers()))
	for _, m := range Managers() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func missing(m Manager, path string) error {
	return &errors.MissingManifestError{
		Manager:     string(m),
		Path:        path,
		File:        m.Manifest(),
		Remediation: m.Remediation(),
	}
}

func unreadable(path string, err error) error {
	return errors.Wrap(errors.ErrCodeUnreadableFile, err, "Can't read %s", path)
}


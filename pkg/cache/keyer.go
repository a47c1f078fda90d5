package cache

// Keyer derives cache keys.
type Keyer interface {
	// ManifestKey identifies the records parsed from one manifest.
	ManifestKey(manager, contentHash string, opts ManifestKeyOpts) string
}

// ManifestKeyOpts holds the parse options that change the output for the
// same manifest bytes.
type ManifestKeyOpts struct {
	FlushTrailingStanza bool `json:"flush_trailing_stanza"`
}

// keyVersion is bumped whenever the cached record shape changes.
const keyVersion = "v1"

// DefaultKeyer produces "manifest:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ManifestKey hashes the manager, the content hash and the options.
func (DefaultKeyer) ManifestKey(manager, contentHash string, opts ManifestKeyOpts) string {
	return hashKey("manifest", keyVersion, manager, contentHash, opts)
}

var _ Keyer = DefaultKeyer{}

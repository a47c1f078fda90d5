package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis without colliding:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "godepscan:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ManifestKey generates a prefixed manifest key.
func (k *ScopedKeyer) ManifestKey(manager, contentHash string, opts ManifestKeyOpts) string {
	return k.prefix + k.inner.ManifestKey(manager, contentHash, opts)
}

// Prefix returns the scope prefix.
func (k *ScopedKeyer) Prefix() string {
	return k.prefix
}

package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Useful in service mode where different datasets or users need separate
// cache namespaces over one shared backend.
//
// Example usage:
//
//	// Dataset-specific keys
//	dsKeyer := NewScopedKeyer(NewDefaultKeyer(), "dataset:wales:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
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

// CollisionKey generates a prefixed key for collision-string caching.
func (k *ScopedKeyer) CollisionKey(objHash string, opts CollisionKeyOpts) string {
	return k.prefix + k.inner.CollisionKey(objHash, opts)
}

// VariationKey generates a prefixed key for variation caching.
func (k *ScopedKeyer) VariationKey(hashA, hashB string, opts VariationKeyOpts) string {
	return k.prefix + k.inner.VariationKey(hashA, hashB, opts)
}

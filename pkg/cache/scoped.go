package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving several
// projects or serve tenants separate namespaces in one backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:catan:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SheetKey implements Keyer.
func (k *ScopedKeyer) SheetKey(name string, opts SheetKeyOpts) string {
	return k.prefix + k.inner.SheetKey(name, opts)
}

// SplitKey implements Keyer.
func (k *ScopedKeyer) SplitKey(name string, opts SplitKeyOpts) string {
	return k.prefix + k.inner.SplitKey(name, opts)
}

// ArtifactKey implements Keyer. parent already carries the prefix.
func (k *ScopedKeyer) ArtifactKey(parent, name string) string {
	return k.inner.ArtifactKey(parent, name)
}

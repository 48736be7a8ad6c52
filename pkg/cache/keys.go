package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SheetKey returns "sheet:{name}:{hash}".
func (DefaultKeyer) SheetKey(name string, opts SheetKeyOpts) string {
	return hashKey("sheet:"+name, opts)
}

// SplitKey returns "split:{name}:{hash}".
func (DefaultKeyer) SplitKey(name string, opts SplitKeyOpts) string {
	return hashKey("split:"+name, opts)
}

// ArtifactKey returns "{parent}/{name}".
func (DefaultKeyer) ArtifactKey(parent, name string) string {
	return parent + "/" + name
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

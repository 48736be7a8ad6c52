// Package cache stores rendered artifacts between runs.
//
// Rendering a sheet or splitting a board is deterministic for a given
// description and set of source files, so the pipeline keys every encoded
// artifact by a hash of both and skips the work on a hit.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several serve instances
//   - [MemoryCache]: bounded in-process cache (ristretto)
//   - [NullCache]: stores nothing (--no-cache)
//
// # Keys
//
// A [Keyer] builds keys from content hashes. Source files enter a key
// through their stamp (absolute path, size, modification time), so editing
// a card image invalidates every sheet that uses it.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SheetKey identifies a rendered sheet.
	SheetKey(name string, opts SheetKeyOpts) string

	// SplitKey identifies the index of a split job.
	SplitKey(name string, opts SplitKeyOpts) string

	// ArtifactKey identifies one file produced under parent, e.g. a tile.
	ArtifactKey(parent, name string) string
}

// SheetKeyOpts holds everything a sheet render depends on.
type SheetKeyOpts struct {
	Tree    []byte   `json:"tree"`    // canonical encoding of the node tree
	Sources []string `json:"sources"` // stamps of referenced files, tree order
	Format  string   `json:"format"`
}

// SplitKeyOpts holds everything a split depends on.
type SplitKeyOpts struct {
	Source  string `json:"source"` // stamp of the source image
	Mask    string `json:"mask,omitempty"`
	Options []byte `json:"options"` // canonical encoding of the tiler options
	Format  string `json:"format"`
}

package codec

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

const (
	// DefaultCacheBytes bounds the decoded-image memo (256 MiB of NRGBA pixels).
	DefaultCacheBytes = 256 << 20

	// decodedTTL keeps memoized decodes from outliving a long serve session.
	decodedTTL = 30 * time.Minute
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// MaxDecodes bounds concurrent file decodes. Defaults to runtime.NumCPU().
	MaxDecodes int

	// CacheBytes bounds memoized decoded pixels. Zero uses DefaultCacheBytes;
	// a negative value disables memoization.
	CacheBytes int64
}

// Loader decodes image files with bounded concurrency and memoizes the
// results. Returned images are shared between callers and must not be
// mutated; every codec operation already returns a fresh buffer.
//
// A Loader is safe for concurrent use.
type Loader struct {
	sem   *semaphore.Weighted
	cache *ristretto.Cache[string, *image.NRGBA]
}

// NewLoader creates a Loader.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	if opts.MaxDecodes <= 0 {
		opts.MaxDecodes = runtime.NumCPU()
	}
	l := &Loader{sem: semaphore.NewWeighted(int64(opts.MaxDecodes))}

	if opts.CacheBytes == 0 {
		opts.CacheBytes = DefaultCacheBytes
	}
	if opts.CacheBytes > 0 {
		c, err := ristretto.NewCache(&ristretto.Config[string, *image.NRGBA]{
			NumCounters: 10000,
			MaxCost:     opts.CacheBytes,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("create decode cache: %w", err)
		}
		l.cache = c
	}
	return l, nil
}

// Load decodes the image at path, serving repeated loads of an unchanged
// file from memory.
func (l *Loader) Load(ctx context.Context, path string) (*image.NRGBA, error) {
	key, err := stampKey(path)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if img, ok := l.cache.Get(key); ok {
			return img, nil
		}
	}

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	img, err := Open(path)
	l.sem.Release(1)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.cache.SetWithTTL(key, img, int64(len(img.Pix)), decodedTTL)
	}
	return img, nil
}

// Size reads the image header at path.
func (l *Loader) Size(path string) (geom.Size, error) {
	return DecodeConfig(path)
}

// Close releases the memo.
func (l *Loader) Close() {
	if l.cache != nil {
		l.cache.Close()
	}
}

// Stamp returns a string identifying the current content of path by its
// absolute name, size and modification time. It is used in cache keys.
func Stamp(path string) (string, error) {
	return stampKey(path)
}

func stampKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "resolve %s", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "image not found: %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeIO, err, "stat %s", path)
	}
	return fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()), nil
}

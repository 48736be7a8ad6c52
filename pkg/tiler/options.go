package tiler

import (
	"math"
	"runtime"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// MaxChunkSize is the largest accepted interior chunk size.
const MaxChunkSize = 4096

// DefaultBaseName names tiles when Options.BaseName is empty.
const DefaultBaseName = "tile"

// Options configures a split.
type Options struct {
	// ChunkSize is the interior (pre-bleed) edge length of a chunk,
	// in (0, MaxChunkSize].
	ChunkSize int

	// Gutter is the bleed added to every side of a chunk, in [0, ChunkSize].
	Gutter int

	// AutoGutter derives the gutter from the chunk size with
	// geom.GutterFor when Gutter is zero.
	AutoGutter bool

	// MaxDimension pre-shrinks the source so neither side exceeds it.
	// Zero disables shrinking.
	MaxDimension int

	// BaseName prefixes tile names: "{base}-{col}x{row}".
	BaseName string

	// ObjectSize, when set, adds object-space placement to every chunk.
	ObjectSize *geom.SizeF

	// MaskMultiplier is how many source pixels one mask pixel covers along
	// each axis. Defaults to 1.
	MaskMultiplier int

	// FillCorners fills gutter corners from the chunk's corner pixels.
	FillCorners bool

	// Concurrency bounds parallel chunk work. Defaults to runtime.NumCPU().
	Concurrency int
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.ChunkSize <= 0 || o.ChunkSize > MaxChunkSize {
		return errors.New(errors.ErrCodeInvalidChunkSize,
			"chunk size must be in (0, %d], got %d", MaxChunkSize, o.ChunkSize)
	}
	if o.Gutter == 0 && o.AutoGutter {
		o.Gutter = geom.GutterFor(o.ChunkSize, o.ChunkSize)
	}
	if o.Gutter < 0 || o.Gutter > o.ChunkSize {
		return errors.New(errors.ErrCodeInvalidGutter,
			"gutter must be in [0, %d], got %d", o.ChunkSize, o.Gutter)
	}
	if o.MaxDimension < 0 {
		return errors.New(errors.ErrCodeInvalidDimension, "max dimension must not be negative, got %d", o.MaxDimension)
	}
	if o.MaskMultiplier < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "mask multiplier must not be negative, got %d", o.MaskMultiplier)
	}
	if o.MaskMultiplier == 0 {
		o.MaskMultiplier = 1
	}
	if o.ObjectSize != nil && !(positiveFinite(o.ObjectSize.W) && positiveFinite(o.ObjectSize.H)) {
		return errors.New(errors.ErrCodeInvalidDimension,
			"object size must be positive and finite, got %gx%g", o.ObjectSize.W, o.ObjectSize.H)
	}
	if o.BaseName == "" {
		o.BaseName = DefaultBaseName
	}
	if err := errors.ValidateAssetName(o.BaseName); err != nil {
		return err
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
	}
	return nil
}

// maskGutter scales the gutter into mask space, keeping at least one pixel
// whenever the source has a gutter.
func (o *Options) maskGutter() int {
	if o.Gutter == 0 {
		return 0
	}
	return max(1, o.Gutter/o.MaskMultiplier)
}

// maskSize is the mask resolution expected for a source of size s.
func (o *Options) maskSize(s geom.Size) geom.Size {
	m := o.MaskMultiplier
	if m <= 1 {
		return s
	}
	return geom.Size{W: geom.CeilDiv(s.W, m), H: geom.CeilDiv(s.H, m)}
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

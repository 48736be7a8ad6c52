package cell

import (
	"context"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
)

// ImageOptions controls post-processing of an Image cell. Filters apply in
// the order grayscale, invert, tint, alpha.
type ImageOptions struct {
	// Alpha scales opacity. Nil means fully opaque; otherwise it must lie
	// in [0,1].
	Alpha *float64

	// Tint multiplies the colour channels by a "#RRGGBB" colour.
	Tint string

	Grayscale bool
	Invert    bool

	// Loader decodes the source file. Nil uses a private loader without
	// memoization.
	Loader *codec.Loader
}

// Image is a leaf backed by an image file, resampled to the declared size.
type Image struct {
	*node
	path string
	opts ImageOptions
	tint *color.NRGBA
}

// NewImage creates a w×h cell that renders the file at path.
// The file is not opened until Render.
func NewImage(w, h int, path string, opts ImageOptions) (*Image, error) {
	n, err := newNode("image", w, h)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "image: path is empty")
	}
	if opts.Alpha != nil && (math.IsNaN(*opts.Alpha) || *opts.Alpha < 0 || *opts.Alpha > 1) {
		return nil, errors.New(errors.ErrCodeInvalidAlpha, "image: alpha must be in [0,1], got %g", *opts.Alpha)
	}
	img := &Image{node: n, path: path, opts: opts}
	if opts.Tint != "" {
		c, ok := codec.ParseHexColor(opts.Tint)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidTint, "image: tint must be #RRGGBB, got %q", opts.Tint)
		}
		img.tint = &c
	}
	n.self = img
	return img, nil
}

// ImageFrom creates an Image cell sized from the file's own metadata.
func ImageFrom(path string, opts ImageOptions) (*Image, error) {
	size, err := codec.DecodeConfig(path)
	if err != nil {
		return nil, err
	}
	return NewImage(size.W, size.H, path, opts)
}

// Path returns the source file.
func (c *Image) Path() string { return c.path }

// Describe implements Describer.
func (c *Image) Describe() string { return filepath.Base(c.path) }

// Render implements Cell.
func (c *Image) Render(ctx context.Context) (*image.NRGBA, error) {
	var (
		src *image.NRGBA
		err error
	)
	if c.opts.Loader != nil {
		src, err = c.opts.Loader.Load(ctx, c.path)
	} else {
		src, err = codec.Open(c.path)
	}
	if err != nil {
		return nil, err
	}

	out := codec.Resize(src, c.size.W, c.size.H)
	if c.opts.Grayscale {
		out = codec.Grayscale(out)
	}
	if c.opts.Invert {
		out = codec.Invert(out)
	}
	if c.tint != nil {
		out = codec.Tint(out, *c.tint)
	}
	if c.opts.Alpha != nil && *c.opts.Alpha < 1 {
		out = codec.Opacity(out, *c.opts.Alpha)
	}
	return out, nil
}

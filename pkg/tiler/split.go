package tiler

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// Tile is a rendered chunk.
type Tile struct {
	Chunk

	// Name is Chunk.Name(BaseName).
	Name string

	// Image is the chunk's pixels extended by the gutter on every side.
	Image *image.NRGBA

	// Mask is the matching mask region, extended by the mask gutter.
	// Nil when no mask was supplied.
	Mask     *image.NRGBA
	MaskName string
	MaskRect geom.Rect
}

// Split cuts src into bled tiles. mask may be nil; otherwise it must be the
// source size divided by opts.MaskMultiplier (rounded up) and is cut along
// the same grid.
func Split(ctx context.Context, src, mask image.Image, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "source image is nil")
	}
	grid, err := plan(codec.Size(src), &opts)
	if err != nil {
		return nil, err
	}
	if mask != nil {
		if got, want := codec.Size(mask), opts.maskSize(grid.Original); got != want {
			return nil, errors.New(errors.ErrCodeSizeMismatch,
				"mask is %s, want %s for a %s source at multiplier %d", got, want, grid.Original, opts.MaskMultiplier)
		}
	}
	return split(ctx, src, mask, grid, &opts)
}

// SplitFile splits the image at path, pairing it with the mask at maskPath
// when maskPath is not empty. Header metadata of both files is checked
// before any pixels are decoded. loader may be nil.
func SplitFile(ctx context.Context, loader *codec.Loader, path, maskPath string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	size, err := codec.DecodeConfig(path)
	if err != nil {
		return nil, err
	}
	grid, err := plan(size, &opts)
	if err != nil {
		return nil, err
	}
	if maskPath != "" {
		ms, err := codec.DecodeConfig(maskPath)
		if err != nil {
			return nil, err
		}
		if want := opts.maskSize(size); ms != want {
			return nil, errors.New(errors.ErrCodeSizeMismatch,
				"mask %s is %s, want %s", maskPath, ms, want)
		}
	}

	src, err := load(ctx, loader, path)
	if err != nil {
		return nil, err
	}
	if got := codec.Size(src); got != size {
		return nil, errors.New(errors.ErrCodeBadMetadata, "%s decodes to %s but its header says %s", path, got, size)
	}
	var mask image.Image
	if maskPath != "" {
		m, err := load(ctx, loader, maskPath)
		if err != nil {
			return nil, err
		}
		mask = m
	}
	return split(ctx, src, mask, grid, &opts)
}

func load(ctx context.Context, loader *codec.Loader, path string) (*image.NRGBA, error) {
	if loader != nil {
		return loader.Load(ctx, path)
	}
	return codec.Open(path)
}

func split(ctx context.Context, src, mask image.Image, grid *Grid, opts *Options) (*Result, error) {
	if grid.Size != grid.Original {
		src = codec.Resize(src, grid.Size.W, grid.Size.H)
		if mask != nil {
			ms := opts.maskSize(grid.Size)
			mask = codec.Resize(mask, ms.W, ms.H)
		}
	}

	res := &Result{
		BaseName:       opts.BaseName,
		Original:       grid.Original,
		Size:           grid.Size,
		ChunkSize:      opts.ChunkSize,
		Gutter:         opts.Gutter,
		MaskMultiplier: opts.MaskMultiplier,
		Cols:           grid.Cols,
		Rows:           grid.Rows,
		Tiles:          make([]Tile, len(grid.Chunks)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, ch := range grid.Chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Tiles[i] = cutTile(src, mask, ch, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// cutTile extracts one chunk and its mask region and applies the bleed.
func cutTile(src, mask image.Image, ch Chunk, opts *Options) Tile {
	t := Tile{Chunk: ch, Name: ch.Name(opts.BaseName)}
	t.Image = bleed(codec.Crop(src, ch.Pixel), opts.Gutter, opts.FillCorners)
	if mask != nil {
		t.MaskRect = ch.Pixel.Scale(1, opts.MaskMultiplier)
		t.MaskName = ch.MaskName(opts.BaseName)
		t.Mask = bleed(codec.Crop(mask, t.MaskRect), opts.maskGutter(), opts.FillCorners)
	}
	return t
}

func bleed(img *image.NRGBA, px int, fillCorners bool) *image.NRGBA {
	if px <= 0 {
		return img
	}
	return codec.ExtendEdges(img, px, fillCorners)
}

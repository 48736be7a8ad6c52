package tiler

import (
	"fmt"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// Chunk is one cell of the split grid.
type Chunk struct {
	Col int `json:"col"`
	Row int `json:"row"`

	// Pixel is the chunk's interior in (pre-shrunk) source pixels.
	Pixel geom.Rect `json:"pixel"`

	// UV is Pixel divided by the source size.
	UV geom.UVRect `json:"uv"`

	// Object is the chunk's placement on the physical object, if known.
	Object *geom.ObjectRect `json:"object,omitempty"`
}

// Name returns the deterministic tile name "{base}-{col}x{row}".
func (c Chunk) Name(base string) string {
	return fmt.Sprintf("%s-%dx%d", base, c.Col, c.Row)
}

// MaskName returns the name of the chunk's paired mask tile.
func (c Chunk) MaskName(base string) string {
	return fmt.Sprintf("%s-mask-%dx%d", base, c.Col, c.Row)
}

// Grid is the planned split of one source.
type Grid struct {
	Original geom.Size `json:"original"`
	Size     geom.Size `json:"size"`
	Cols     int       `json:"cols"`
	Rows     int       `json:"rows"`
	Chunks   []Chunk   `json:"chunks"`
}

// Plan validates opts and lays the chunk grid over a width×height source,
// after pre-shrinking to opts.MaxDimension. Chunks are ordered column-major.
// opts is not modified.
func Plan(width, height int, opts Options) (*Grid, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return plan(geom.Size{W: width, H: height}, &opts)
}

func plan(original geom.Size, opts *Options) (*Grid, error) {
	if !original.Positive() {
		return nil, errors.New(errors.ErrCodeBadMetadata, "source reports size %s", original)
	}
	size := original.FitWithin(opts.MaxDimension)

	c := opts.ChunkSize
	g := &Grid{
		Original: original,
		Size:     size,
		Cols:     geom.CeilDiv(size.W, c),
		Rows:     geom.CeilDiv(size.H, c),
	}
	g.Chunks = make([]Chunk, 0, g.Cols*g.Rows)
	for col := 0; col < g.Cols; col++ {
		for row := 0; row < g.Rows; row++ {
			px := geom.Rect{
				Left:   col * c,
				Top:    row * c,
				Width:  min(c, size.W-col*c),
				Height: min(c, size.H-row*c),
			}
			ch := Chunk{Col: col, Row: row, Pixel: px, UV: px.UV(size)}
			if opts.ObjectSize != nil {
				obj := ch.UV.ObjectRect(*opts.ObjectSize)
				ch.Object = &obj
			}
			g.Chunks = append(g.Chunks, ch)
		}
	}
	return g, nil
}

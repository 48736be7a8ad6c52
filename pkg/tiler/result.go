package tiler

import (
	"encoding/json"

	"github.com/matzehuels/boardtex/pkg/geom"
)

// Result is a completed split.
type Result struct {
	BaseName       string
	Original       geom.Size
	Size           geom.Size
	ChunkSize      int
	Gutter         int
	MaskMultiplier int
	Cols           int
	Rows           int
	Tiles          []Tile
}

// Index is the placement manifest handed to downstream asset tooling.
type Index struct {
	Base      string       `json:"base"`
	Original  geom.Size    `json:"original"`
	Size      geom.Size    `json:"size"`
	ChunkSize int          `json:"chunk_size"`
	Gutter    int          `json:"gutter"`
	Cols      int          `json:"cols"`
	Rows      int          `json:"rows"`
	Tiles     []IndexEntry `json:"tiles"`
}

// IndexEntry describes one tile.
type IndexEntry struct {
	Name    string           `json:"name"`
	Col     int              `json:"col"`
	Row     int              `json:"row"`
	Pixel   geom.Rect        `json:"pixel"`
	UV      geom.UVRect      `json:"uv"`
	Object  *geom.ObjectRect `json:"object,omitempty"`
	Texture geom.Size        `json:"texture"`
	Mask    string           `json:"mask,omitempty"`
}

// Index builds the placement manifest.
func (r *Result) Index() Index {
	idx := Index{
		Base:      r.BaseName,
		Original:  r.Original,
		Size:      r.Size,
		ChunkSize: r.ChunkSize,
		Gutter:    r.Gutter,
		Cols:      r.Cols,
		Rows:      r.Rows,
		Tiles:     make([]IndexEntry, len(r.Tiles)),
	}
	for i, t := range r.Tiles {
		e := IndexEntry{
			Name:   t.Name,
			Col:    t.Col,
			Row:    t.Row,
			Pixel:  t.Pixel,
			UV:     t.UV,
			Object: t.Object,
			Mask:   t.MaskName,
		}
		if t.Image != nil {
			b := t.Image.Bounds()
			e.Texture = geom.Size{W: b.Dx(), H: b.Dy()}
		}
		idx.Tiles[i] = e
	}
	return idx
}

// Manifest returns the indented JSON encoding of Index.
func (r *Result) Manifest() ([]byte, error) {
	return json.MarshalIndent(r.Index(), "", "  ")
}

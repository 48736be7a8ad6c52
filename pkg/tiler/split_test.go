package tiler

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

func gray(v uint8) color.NRGBA { return color.NRGBA{R: v, G: v, B: v, A: 255} }

// numbered returns a w×h image whose pixel (x,y) has value y*w+x+1.
func numbered(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, gray(uint8(y*w+x+1)))
		}
	}
	return img
}

func writePNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data, err := codec.EncodeBytes(img, codec.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplitQuadrants(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, gray(1))
	src.SetNRGBA(1, 0, gray(3))
	src.SetNRGBA(0, 1, gray(6))
	src.SetNRGBA(1, 1, gray(9))

	res, err := Split(context.Background(), src, nil, Options{ChunkSize: 1, BaseName: "q"})
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		col, row int
		value    uint8
		uv       geom.UVRect
	}{
		{0, 0, 1, geom.UVRect{Left: 0, Top: 0, Width: 0.5, Height: 0.5}},
		{0, 1, 6, geom.UVRect{Left: 0, Top: 0.5, Width: 0.5, Height: 0.5}},
		{1, 0, 3, geom.UVRect{Left: 0.5, Top: 0, Width: 0.5, Height: 0.5}},
		{1, 1, 9, geom.UVRect{Left: 0.5, Top: 0.5, Width: 0.5, Height: 0.5}},
	}
	if len(res.Tiles) != len(want) {
		t.Fatalf("got %d tiles, want %d", len(res.Tiles), len(want))
	}
	for i, w := range want {
		tile := res.Tiles[i]
		if tile.Col != w.col || tile.Row != w.row {
			t.Errorf("tile %d at (%d,%d), want (%d,%d)", i, tile.Col, tile.Row, w.col, w.row)
		}
		if got := codec.Size(tile.Image); got != (geom.Size{W: 1, H: 1}) {
			t.Errorf("tile %d size = %s", i, got)
		}
		if got := tile.Image.NRGBAAt(0, 0).R; got != w.value {
			t.Errorf("tile %d value = %d, want %d", i, got, w.value)
		}
		if tile.UV != w.uv {
			t.Errorf("tile %d UV = %+v, want %+v", i, tile.UV, w.uv)
		}
	}
	if res.Tiles[1].Name != "q-0x1" {
		t.Errorf("name = %q, want q-0x1", res.Tiles[1].Name)
	}
}

func TestSplitGutter(t *testing.T) {
	src := numbered(4, 4)
	res, err := Split(context.Background(), src, nil, Options{ChunkSize: 2, Gutter: 1, Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tiles) != 4 {
		t.Fatalf("got %d tiles", len(res.Tiles))
	}

	// Chunk (1,0) covers source x 2..3, y 0..1: values 3,4 / 7,8.
	tile := res.Tiles[2]
	if tile.Col != 1 || tile.Row != 0 {
		t.Fatalf("tile 2 at (%d,%d)", tile.Col, tile.Row)
	}
	if got := codec.Size(tile.Image); got != (geom.Size{W: 4, H: 4}) {
		t.Fatalf("bled size = %s, want 4x4", got)
	}
	checks := []struct {
		x, y int
		want uint8
	}{
		{1, 1, 3}, {2, 2, 8},
		{1, 0, 3}, {2, 0, 4},
		{0, 1, 3}, {0, 2, 7},
		{3, 1, 4}, {3, 2, 8},
		{1, 3, 7}, {2, 3, 8},
	}
	for _, c := range checks {
		if got := tile.Image.NRGBAAt(c.x, c.y).R; got != c.want {
			t.Errorf("bled pixel (%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
	if a := tile.Image.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
}

func TestSplitDoesNotMutateSource(t *testing.T) {
	src := numbered(6, 6)
	before := append([]uint8(nil), src.Pix...)
	if _, err := Split(context.Background(), src, nil, Options{ChunkSize: 4, Gutter: 2, FillCorners: true}); err != nil {
		t.Fatal(err)
	}
	if string(before) != string(src.Pix) {
		t.Error("source modified")
	}
}

func TestSplitMask(t *testing.T) {
	src := numbered(4, 4)
	mask := numbered(2, 2)
	res, err := Split(context.Background(), src, mask, Options{ChunkSize: 2, Gutter: 2, MaskMultiplier: 2, BaseName: "m"})
	if err != nil {
		t.Fatal(err)
	}
	for _, tile := range res.Tiles {
		if tile.Mask == nil {
			t.Fatalf("tile %s has no mask", tile.Name)
		}
		wantRect := geom.Rect{Left: tile.Col, Top: tile.Row, Width: 1, Height: 1}
		if tile.MaskRect != wantRect {
			t.Errorf("%s mask rect = %s, want %s", tile.Name, tile.MaskRect, wantRect)
		}
		if got := codec.Size(tile.Mask); got != (geom.Size{W: 3, H: 3}) {
			t.Errorf("%s mask size = %s, want 3x3", tile.Name, got)
		}
		want := uint8(tile.Row*2 + tile.Col + 1)
		if got := tile.Mask.NRGBAAt(1, 1).R; got != want {
			t.Errorf("%s mask value = %d, want %d", tile.Name, got, want)
		}
	}
	if res.Tiles[0].MaskName != "m-mask-0x0" {
		t.Errorf("mask name = %q", res.Tiles[0].MaskName)
	}
}

func TestSplitMaskSizeMismatch(t *testing.T) {
	src := numbered(5, 5)
	tests := []struct {
		name string
		mask image.Image
		mult int
	}{
		{"full size expected", numbered(4, 5), 1},
		{"rounded up", numbered(2, 2), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(context.Background(), src, tt.mask, Options{ChunkSize: 2, MaskMultiplier: tt.mult})
			if !errors.Is(err, errors.ErrCodeSizeMismatch) {
				t.Errorf("err = %v, want SIZE_MISMATCH", err)
			}
		})
	}
	if _, err := Split(context.Background(), src, numbered(3, 3), Options{ChunkSize: 2, MaskMultiplier: 2}); err != nil {
		t.Errorf("ceil-sized mask rejected: %v", err)
	}
}

func TestSplitPreShrink(t *testing.T) {
	src := codec.Fill(8, 4, gray(200))
	mask := codec.Fill(8, 4, gray(50))
	res, err := Split(context.Background(), src, mask, Options{ChunkSize: 2, MaxDimension: 4})
	if err != nil {
		t.Fatal(err)
	}
	if res.Size != (geom.Size{W: 4, H: 2}) || res.Original != (geom.Size{W: 8, H: 4}) {
		t.Errorf("size = %s from %s", res.Size, res.Original)
	}
	if len(res.Tiles) != 2 {
		t.Errorf("got %d tiles, want 2", len(res.Tiles))
	}
	for _, tile := range res.Tiles {
		if got := codec.Size(tile.Mask); got != (geom.Size{W: 2, H: 2}) {
			t.Errorf("mask size = %s", got)
		}
	}
}

func TestSplitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Split(ctx, numbered(4, 4), nil, Options{ChunkSize: 1}); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestSplitFile(t *testing.T) {
	path := writePNG(t, "board.png", numbered(6, 4))
	maskPath := writePNG(t, "mask.png", numbered(3, 2))
	loader, err := codec.NewLoader(codec.LoaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer loader.Close()

	res, err := SplitFile(context.Background(), loader, path, maskPath, Options{ChunkSize: 4, Gutter: 1, MaskMultiplier: 2, BaseName: "board"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Cols != 2 || res.Rows != 1 {
		t.Errorf("grid = %dx%d, want 2x1", res.Cols, res.Rows)
	}
	if got := codec.Size(res.Tiles[1].Image); got != (geom.Size{W: 4, H: 6}) {
		t.Errorf("edge tile size = %s, want 4x6", got)
	}

	data, err := res.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		t.Fatal(err)
	}
	if len(idx.Tiles) != 2 || idx.Tiles[1].Name != "board-1x0" || idx.Tiles[1].Mask != "board-mask-1x0" {
		t.Errorf("index = %+v", idx.Tiles)
	}
	if idx.Tiles[0].Texture != (geom.Size{W: 6, H: 6}) {
		t.Errorf("texture = %s, want 6x6", idx.Tiles[0].Texture)
	}
}

func TestSplitFileErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := writePNG(t, "good.png", numbered(4, 4))

	tests := []struct {
		name string
		path string
		mask string
		opts Options
		want errors.Code
	}{
		{"missing", filepath.Join(dir, "missing.png"), "", Options{ChunkSize: 2}, errors.ErrCodeFileNotFound},
		{"undecodable", garbage, "", Options{ChunkSize: 2}, errors.ErrCodeIO},
		{"bad chunk before io", filepath.Join(dir, "missing.png"), "", Options{ChunkSize: 5000}, errors.ErrCodeInvalidChunkSize},
		{"missing mask", good, filepath.Join(dir, "nomask.png"), Options{ChunkSize: 2}, errors.ErrCodeFileNotFound},
		{"wrong mask", good, good, Options{ChunkSize: 2, MaskMultiplier: 2}, errors.ErrCodeSizeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitFile(context.Background(), nil, tt.path, tt.mask, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

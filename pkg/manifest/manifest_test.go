package manifest

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/boardtex/pkg/cell"
	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

const deck = `
[[sheet]]
name = "deck"
format = "jpg"

  [sheet.root]
  kind = "padded"
  padding = 2
  background = "#000000"

    [[sheet.root.children]]
    kind = "grid"
    spacing = 1

      [[sheet.root.children.children]]
      kind = "image"
      file = "cards/a.png"
      tint = "#ff0000"

      [[sheet.root.children.children]]
      kind = "solid"
      width = 4
      height = 4
      color = "#00ff00"

      [[sheet.root.children.children]]
      kind = "text"
      width = 4
      height = 4
      text = "A"
      font_size = 3

[[split]]
name = "board"
source = "board.png"
mask = "board-mask.png"
chunk = 2032
gutter = 8
max_dimension = 8192
mask_multiplier = 4
object_width = 30.0
object_height = 20.0
fill_corners = true
out_dir = "tiles"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeCard(t *testing.T, dir string) {
	t.Helper()
	data, err := codec.EncodeBytes(codec.Fill(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255}), codec.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "cards/a.png", string(data))
}

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(deck))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Sheets) != 1 || len(m.Splits) != 1 {
		t.Fatalf("got %d sheets, %d splits", len(m.Sheets), len(m.Splits))
	}
	s, ok := m.FindSheet("deck")
	if !ok {
		t.Fatal("sheet not found")
	}
	if s.OutputName() != "deck.jpg" || s.EncodeFormat() != codec.FormatJPEG {
		t.Errorf("output = %q format %q", s.OutputName(), s.EncodeFormat())
	}
	if got := s.Root.Files(); len(got) != 1 || got[0] != "cards/a.png" {
		t.Errorf("Files = %v", got)
	}

	sp, ok := m.FindSplit("board")
	if !ok {
		t.Fatal("split not found")
	}
	opts := sp.Options()
	if opts.ChunkSize != 2032 || opts.Gutter != 8 || opts.MaxDimension != 8192 || opts.MaskMultiplier != 4 || !opts.FillCorners {
		t.Errorf("options = %+v", opts)
	}
	if opts.BaseName != "board" {
		t.Errorf("base name = %q", opts.BaseName)
	}
	if opts.ObjectSize == nil || *opts.ObjectSize != (geom.SizeF{W: 30, H: 20}) {
		t.Errorf("object size = %v", opts.ObjectSize)
	}
	if _, ok := m.FindSplit("deck"); ok {
		t.Error("FindSplit matched a sheet")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", ``, "no sheets"},
		{"syntax", `[[sheet]`, "parse manifest"},
		{"unknown key", "[[split]]\nname = \"a\"\nsource = \"a.png\"\nchunk = 2\ncolour = 1\n", "colour"},
		{"duplicate name", "[[sheet]]\nname = \"a\"\n[sheet.root]\nkind = \"solid\"\n[[split]]\nname = \"a\"\nsource = \"a.png\"\n", "already used"},
		{"bad name", "[[sheet]]\nname = \"../up\"\n[sheet.root]\nkind = \"solid\"\n", "sheet name"},
		{"traversal", "[[split]]\nname = \"a\"\nsource = \"../secret.png\"\n", "source"},
		{"absolute image", "[[sheet]]\nname = \"a\"\n[sheet.root]\nkind = \"image\"\nfile = \"/etc/img.png\"\n", "root"},
		{"bad format", "[[sheet]]\nname = \"a\"\nformat = \"gif\"\n[sheet.root]\nkind = \"solid\"\n", "gif"},
		{"half object size", "[[split]]\nname = \"a\"\nsource = \"a.png\"\nobject_width = 3.0\n", "together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if !errors.Is(err, errors.ErrCodeInvalidManifest) {
				t.Fatalf("err = %v, want INVALID_MANIFEST", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadAndBuild(t *testing.T) {
	dir := t.TempDir()
	writeCard(t, dir)
	path := writeFile(t, dir, "boardtex.toml", deck)

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dir != dir {
		t.Errorf("Dir = %q, want %q", m.Dir, dir)
	}

	root, err := m.Build(&m.Sheets[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	// Three 4x4 cells fill a 2x2 grid (9x9 with spacing), padded by 2.
	if got := root.Size(); got != (geom.Size{W: 13, H: 13}) {
		t.Errorf("size = %s, want 13x13", got)
	}
	if n := cell.Count(root); n != 5 {
		t.Errorf("cell count = %d, want 5", n)
	}

	img, err := root.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := img.NRGBAAt(3, 3); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("tinted card pixel = %v, want red", got)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{A: 255}) {
		t.Errorf("frame pixel = %v, want black", got)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errors.IsNotFound(err) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		root Node
		code errors.Code
		path string
	}{
		{"missing kind", Node{}, errors.ErrCodeInvalidManifest, "root"},
		{"unknown kind", Node{Kind: "hexagon"}, errors.ErrCodeInvalidManifest, "hexagon"},
		{"bad colour deep", Node{Kind: "row", Children: []Node{
			{Kind: "solid", Width: 1, Height: 1, Color: "#000000"},
			{Kind: "solid", Width: 1, Height: 1, Color: "black"},
		}}, errors.ErrCodeInvalidColor, "root.children[1]"},
		{"zero size", Node{Kind: "solid", Color: "#000000"}, errors.ErrCodeInvalidDimension, "root"},
		{"empty row", Node{Kind: "row"}, errors.ErrCodeEmptyChildren, "root"},
		{"padded needs one", Node{Kind: "padded", Children: []Node{
			{Kind: "solid", Width: 1, Height: 1, Color: "#000000"},
			{Kind: "solid", Width: 1, Height: 1, Color: "#000000"},
		}}, errors.ErrCodeInvalidManifest, "exactly one child"},
		{"leaf with children", Node{Kind: "solid", Width: 1, Height: 1, Color: "#000000", Children: []Node{
			{Kind: "solid", Width: 1, Height: 1, Color: "#000000"},
		}}, errors.ErrCodeInvalidManifest, "no children"},
		{"missing image", Node{Kind: "image", File: "missing.png"}, errors.ErrCodeFileNotFound, "root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Builder{Resolve: func(p string) string { return filepath.Join(t.TempDir(), p) }}
			_, err := b.Build(&tt.root)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("err = %v, want mention of %q", err, tt.path)
			}
		})
	}
}

func TestBuildComposites(t *testing.T) {
	root := Node{Kind: "canvas", Width: 20, Height: 20, Children: []Node{
		{Kind: "bleed", Bleed: 2, FillCorners: true, Children: []Node{
			{Kind: "resize", Width: 6, Height: 6, Snaps: []cell.SnapPoint{{Left: 1, Top: 1}}, Children: []Node{
				{Kind: "solid", Width: 3, Height: 3, Color: "#123456"},
			}},
		}},
		{Kind: "col", Spacing: 1, Left: 12, Top: 0, Children: []Node{
			{Kind: "solid", Width: 2, Height: 2, Color: "#ffffff"},
			{Kind: "grid", Cols: 2, Children: []Node{
				{Kind: "solid", Width: 1, Height: 1, Color: "#ffffff"},
				{Kind: "solid", Width: 1, Height: 1, Color: "#ffffff"},
				{Kind: "solid", Width: 1, Height: 1, Color: "#ffffff"},
			}},
		}},
	}}
	c, err := (&Builder{}).Build(&root)
	if err != nil {
		t.Fatal(err)
	}
	kids := c.Children()
	if got := kids[0].Cell.Size(); got != (geom.Size{W: 10, H: 10}) {
		t.Errorf("bleed size = %s, want 10x10", got)
	}
	if got := kids[1].Position(); got != (geom.Point{X: 12, Y: 0}) {
		t.Errorf("col at %v", got)
	}
	if got := kids[1].Cell.Size(); got != (geom.Size{W: 2, H: 5}) {
		t.Errorf("col size = %s, want 2x5", got)
	}
	resize := kids[0].Cell.Children()[0].Cell.(*cell.Resize)
	if sp := resize.SnapPoints(); len(sp) != 1 || sp[0].Left != 2 || sp[0].Top != 2 {
		t.Errorf("snap points = %+v", sp)
	}
}

func TestExampleManifests(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*", "boardtex.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example manifests")
	}
	for _, path := range paths {
		m, err := Load(path)
		if err != nil {
			t.Errorf("%s: %v", path, err)
			continue
		}
		for i := range m.Sheets {
			s := &m.Sheets[i]
			t.Run(filepath.Base(filepath.Dir(path))+"/"+s.Name, func(t *testing.T) {
				root, err := m.Build(s, nil)
				if err != nil {
					t.Fatal(err)
				}
				img, err := root.Render(context.Background())
				if err != nil {
					t.Fatal(err)
				}
				if got := codec.Size(img); got != root.Size() {
					t.Errorf("rendered %s, declared %s", got, root.Size())
				}
			})
		}
	}
}

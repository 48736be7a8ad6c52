package cell

import (
	"image/color"
	"testing"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

func TestLinearSize(t *testing.T) {
	tests := []struct {
		name    string
		row     bool
		spacing int
		sizes   []geom.Size
		want    geom.Size
	}{
		{"row pair", true, 0, []geom.Size{{W: 10, H: 4}, {W: 6, H: 9}}, geom.Size{W: 16, H: 9}},
		{"row pair spaced", true, 5, []geom.Size{{W: 10, H: 4}, {W: 6, H: 9}}, geom.Size{W: 21, H: 9}},
		{"row single spaced", true, 7, []geom.Size{{W: 10, H: 4}}, geom.Size{W: 10, H: 4}},
		{"row triple spaced", true, 2, []geom.Size{{W: 1, H: 1}, {W: 1, H: 3}, {W: 1, H: 2}}, geom.Size{W: 7, H: 3}},
		{"col pair", false, 0, []geom.Size{{W: 10, H: 4}, {W: 6, H: 9}}, geom.Size{W: 10, H: 13}},
		{"col pair spaced", false, 5, []geom.Size{{W: 10, H: 4}, {W: 6, H: 9}}, geom.Size{W: 10, H: 18}},
		{"col single spaced", false, 7, []geom.Size{{W: 10, H: 4}}, geom.Size{W: 10, H: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := make([]Cell, len(tt.sizes))
			for i, s := range tt.sizes {
				cells[i] = solid(t, s.W, s.H, "#000000")
			}
			ctor := NewCol
			if tt.row {
				ctor = NewRow
			}
			l, err := ctor(tt.spacing, cells...)
			if err != nil {
				t.Fatal(err)
			}
			if got := l.Size(); got != tt.want {
				t.Errorf("size = %s, want %s", got, tt.want)
			}
			render(t, l)
		})
	}
}

func TestLinearEmptyPolicy(t *testing.T) {
	if _, err := NewRow(0); !errors.Is(err, errors.ErrCodeEmptyChildren) {
		t.Errorf("NewRow() err = %v, want EMPTY_CHILDREN", err)
	}
	if _, err := NewCol(0); !errors.Is(err, errors.ErrCodeEmptyChildren) {
		t.Errorf("NewCol() err = %v, want EMPTY_CHILDREN", err)
	}
	if _, err := NewCanvas(4, 4); !errors.Is(err, errors.ErrCodeEmptyChildren) {
		t.Errorf("NewCanvas() err = %v, want EMPTY_CHILDREN", err)
	}
	if _, err := NewGrid(2, 0); !errors.Is(err, errors.ErrCodeEmptyChildren) {
		t.Errorf("NewGrid() err = %v, want EMPTY_CHILDREN", err)
	}
}

func TestLinearNegativeSpacing(t *testing.T) {
	a := solid(t, 1, 1, "#000000")
	if _, err := NewRow(-1, a); !errors.Is(err, errors.ErrCodeInvalidDimension) {
		t.Errorf("err = %v, want INVALID_DIMENSION", err)
	}
	if _, err := NewRow(0, a); err != nil {
		t.Errorf("rejected spacing error left a claimed: %v", err)
	}
}

func TestRowRender(t *testing.T) {
	red := solid(t, 2, 2, "#ff0000")
	blue := solid(t, 2, 4, "#0000ff")
	row, err := NewRow(1, red, blue)
	if err != nil {
		t.Fatal(err)
	}
	img := render(t, row)
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("red = %v", got)
	}
	if a := img.NRGBAAt(2, 0).A; a != 0 {
		t.Errorf("gap alpha = %d, want 0", a)
	}
	if a := img.NRGBAAt(0, 3).A; a != 0 {
		t.Errorf("below short child alpha = %d, want 0", a)
	}
	if got := img.NRGBAAt(4, 3); got != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("blue = %v", got)
	}
}

func TestMaxCellCount(t *testing.T) {
	tests := []struct {
		size geom.Size
		want int
	}{
		{geom.Size{W: 250, H: 200}, 16 * 20},
		{geom.Size{W: 4096, H: 4096}, 1},
		{geom.Size{W: 4097, H: 10}, 0},
		{geom.Size{W: 1, H: 1}, 4096 * 4096},
	}
	for _, tt := range tests {
		got, err := MaxCellCount(tt.size)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("MaxCellCount(%s) = %d, want %d", tt.size, got, tt.want)
		}
	}
	if _, err := MaxCellCount(geom.Size{W: 0, H: 5}); !errors.Is(err, errors.ErrCodeInvalidDimension) {
		t.Errorf("err = %v, want INVALID_DIMENSION", err)
	}
}

func TestOptimalLayout(t *testing.T) {
	card := geom.Size{W: 250, H: 200}
	tests := []struct {
		count int
		size  geom.Size
		want  Layout
	}{
		{4, card, Layout{Cols: 1, Rows: 4}},
		{21, card, Layout{Cols: 16, Rows: 2}},
		{1, card, Layout{Cols: 1, Rows: 1}},
		{320, card, Layout{Cols: 16, Rows: 20}},
		{1, geom.Size{W: 4096, H: 4096}, Layout{Cols: 1, Rows: 1}},
	}
	for _, tt := range tests {
		got, err := OptimalLayout(tt.count, tt.size)
		if err != nil {
			t.Fatalf("OptimalLayout(%d, %s): %v", tt.count, tt.size, err)
		}
		if got != tt.want {
			t.Errorf("OptimalLayout(%d, %s) = %+v, want %+v", tt.count, tt.size, got, tt.want)
		}
		px := got.Size(tt.size)
		if px.W > MaxAtlasDimension || px.H > MaxAtlasDimension {
			t.Errorf("layout %+v exceeds the atlas: %s", got, px)
		}
		if got.Cols*got.Rows < tt.count {
			t.Errorf("layout %+v holds fewer than %d cells", got, tt.count)
		}
	}
}

func TestOptimalLayoutErrors(t *testing.T) {
	card := geom.Size{W: 250, H: 200}
	tests := []struct {
		name  string
		count int
		size  geom.Size
		want  errors.Code
	}{
		{"too many", 321, card, errors.ErrCodeTooManyCells},
		{"oversized cell", 1, geom.Size{W: 5000, H: 10}, errors.ErrCodeTooManyCells},
		{"zero count", 0, card, errors.ErrCodeInvalidInput},
		{"bad size", 3, geom.Size{W: 10, H: -1}, errors.ErrCodeInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OptimalLayout(tt.count, tt.size); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestGrid(t *testing.T) {
	cells := []Cell{
		solid(t, 4, 2, "#000000"),
		solid(t, 2, 3, "#000000"),
		solid(t, 1, 1, "#000000"),
		solid(t, 3, 3, "#000000"),
		solid(t, 2, 2, "#000000"),
	}
	g, err := NewGrid(2, 1, cells...)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := g.Layout(), (Layout{Cols: 2, Rows: 3}); got != want {
		t.Errorf("layout = %+v, want %+v", got, want)
	}
	if got, want := g.Slot(), (geom.Size{W: 4, H: 3}); got != want {
		t.Errorf("slot = %s, want %s", got, want)
	}
	if got, want := g.Size(), (geom.Size{W: 9, H: 11}); got != want {
		t.Errorf("size = %s, want %s", got, want)
	}
	wantPos := []geom.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 4}, {X: 5, Y: 4}, {X: 0, Y: 8}}
	for i, ch := range g.Children() {
		if ch.Position() != wantPos[i] {
			t.Errorf("child %d at %v, want %v", i, ch.Position(), wantPos[i])
		}
	}
	render(t, g)
}

func TestGridNarrowsToCount(t *testing.T) {
	g, err := NewGrid(8, 0, solid(t, 3, 3, "#000000"), solid(t, 3, 3, "#000000"))
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Size(); got != (geom.Size{W: 6, H: 3}) {
		t.Errorf("size = %s, want 6x3", got)
	}
	if _, err := NewGrid(0, 0, solid(t, 1, 1, "#000000")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestGridAuto(t *testing.T) {
	cells := make([]Cell, 21)
	for i := range cells {
		cells[i] = solid(t, 250, 200, "#336699")
	}
	g, err := NewGridAuto(0, cells...)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Layout(); got != (Layout{Cols: 16, Rows: 2}) {
		t.Errorf("layout = %+v, want 16x2", got)
	}
	if got := g.Size(); got != (geom.Size{W: 4000, H: 400}) {
		t.Errorf("size = %s", got)
	}
}

func TestPadded(t *testing.T) {
	inner := solid(t, 2, 2, "#ff0000")
	p, err := NewPadded(inner, 3, PaddedOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Size(); got != (geom.Size{W: 8, H: 8}) {
		t.Errorf("size = %s, want 8x8", got)
	}
	img := render(t, p)
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("frame = %v, want white", got)
	}
	if got := img.NRGBAAt(3, 4); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("centre = %v, want red", got)
	}

	q, err := NewPadded(solid(t, 1, 1, "#000000"), 1, PaddedOptions{Background: "#00ff00"})
	if err != nil {
		t.Fatal(err)
	}
	if got := render(t, q).NRGBAAt(2, 0); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("custom frame = %v", got)
	}

	if _, err := NewPadded(solid(t, 1, 1, "#000000"), -1, PaddedOptions{}); !errors.Is(err, errors.ErrCodeInvalidDimension) {
		t.Errorf("err = %v, want INVALID_DIMENSION", err)
	}
	if _, err := NewPadded(solid(t, 1, 1, "#000000"), 1, PaddedOptions{Background: "white"}); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("err = %v, want INVALID_COLOR", err)
	}
}

func TestResize(t *testing.T) {
	inner := solid(t, 100, 50, "#ff0000")
	child, err := NewResize(100, 50, inner, SnapPoint{Left: 50, Top: 25, Rotation: 90, Tags: []string{"centre"}})
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewResize(200, 10, child, SnapPoint{Left: 100, Top: 50})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Size(); got != (geom.Size{W: 200, H: 10}) {
		t.Errorf("size = %s", got)
	}

	snaps := r.SnapPoints()
	want := []SnapPoint{
		{Left: 100, Top: 5, Rotation: 90, Tags: []string{"centre"}},
		{Left: 200, Top: 10},
	}
	if len(snaps) != len(want) {
		t.Fatalf("got %d snap points, want %d", len(snaps), len(want))
	}
	for i := range want {
		if snaps[i].Left != want[i].Left || snaps[i].Top != want[i].Top || snaps[i].Rotation != want[i].Rotation {
			t.Errorf("snap %d = %+v, want %+v", i, snaps[i], want[i])
		}
		if len(snaps[i].Tags) != len(want[i].Tags) {
			t.Errorf("snap %d tags = %v, want %v", i, snaps[i].Tags, want[i].Tags)
		}
	}

	img := render(t, r)
	if got := img.NRGBAAt(150, 5); !near(got.R, 255) || got.G != 0 || !near(got.A, 255) {
		t.Errorf("resampled pixel = %v, want red", got)
	}
}

func TestBleed(t *testing.T) {
	const b = 3
	fill := color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}

	tests := []struct {
		name        string
		fillCorners bool
		cornerAlpha uint8
	}{
		{"edges only", false, 0},
		{"fill corners", true, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := solid(t, 4, 2, "#336699")
			c, err := NewBleed(inner, b, BleedOptions{FillCorners: tt.fillCorners})
			if err != nil {
				t.Fatal(err)
			}
			if got := c.Size(); got != (geom.Size{W: 4 + 2*b, H: 2 + 2*b}) {
				t.Fatalf("size = %s", got)
			}
			if got := inner.LocalPosition(); got != (geom.Point{X: b, Y: b}) {
				t.Errorf("inner at %v, want (%d,%d)", got, b, b)
			}
			img := render(t, c)
			edges := []geom.Point{
				{X: b, Y: 0}, {X: b + 3, Y: b - 1},
				{X: b, Y: b + 2}, {X: b + 1, Y: 2*b + 1},
				{X: 0, Y: b}, {X: b - 1, Y: b + 1},
				{X: b + 4, Y: b}, {X: 2*b + 3, Y: b + 1},
			}
			for _, p := range edges {
				if got := img.NRGBAAt(p.X, p.Y); got != fill {
					t.Errorf("bleed pixel %v = %v, want %v", p, got, fill)
				}
			}
			if a := img.NRGBAAt(0, 0).A; a != tt.cornerAlpha {
				t.Errorf("corner alpha = %d, want %d", a, tt.cornerAlpha)
			}
		})
	}

	if _, err := NewBleed(solid(t, 1, 1, "#000000"), 0, BleedOptions{}); !errors.Is(err, errors.ErrCodeInvalidDimension) {
		t.Errorf("err = %v, want INVALID_DIMENSION", err)
	}
}

func TestBleedForUVs(t *testing.T) {
	c, err := NewBleedForUVs(solid(t, 2032, 16, "#000000"), BleedOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if c.BleedSize() != 8 {
		t.Errorf("bleed = %d, want 8", c.BleedSize())
	}
}

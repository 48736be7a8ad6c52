package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/boardtex/pkg/cell"
	"github.com/matzehuels/boardtex/pkg/errors"
)

func tree(t testing.TB) cell.Cell {
	t.Helper()
	a, err := cell.NewSolid(4, 4, "#000000")
	if err != nil {
		t.Fatal(err)
	}
	b, err := cell.NewSolid(4, 4, "#ffffff")
	if err != nil {
		t.Fatal(err)
	}
	row, err := cell.NewRow(2, a, b)
	if err != nil {
		t.Fatal(err)
	}
	return row
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(tree(t), Options{Offsets: true})

	for _, want := range []string{
		`n0 [label="row\n10x4"];`,
		`n1 [label="solid\n4x4\n#000000", fillcolor="#000000", fontcolor="white", penwidth=2];`,
		`n2 [label="solid\n4x4\n#ffffff", fillcolor="#ffffff", fontcolor="black", penwidth=2];`,
		`n0 -> n1 [label="(0,0)"];`,
		`n0 -> n2 [label="(6,0)"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
}

func TestToDOTOptions(t *testing.T) {
	root := tree(t)

	if dot := ToDOT(root, Options{}); strings.Contains(dot, "label=\"(") {
		t.Error("edge labels without Offsets")
	}

	dot := ToDOT(root, Options{MaxDepth: 0})
	if strings.Count(dot, "->") != 2 {
		t.Errorf("want 2 edges:\n%s", dot)
	}
	outer, err := cell.NewPadded(root, 1, cell.PaddedOptions{})
	if err != nil {
		t.Fatal(err)
	}
	dot = ToDOT(outer, Options{MaxDepth: 1})
	if strings.Count(dot, "->") != 1 || strings.Contains(dot, "n2 ") {
		t.Errorf("MaxDepth 1 should stop below the row:\n%s", dot)
	}

	if dot := ToDOT(nil, Options{}); strings.Contains(dot, "n0") {
		t.Error("nil root produced nodes")
	}
}

func TestToDOTDeterministic(t *testing.T) {
	if ToDOT(tree(t), Options{Offsets: true}) != ToDOT(tree(t), Options{Offsets: true}) {
		t.Error("equal trees gave different DOT")
	}
}

func TestRender(t *testing.T) {
	dot := ToDOT(tree(t), Options{})
	tests := []struct {
		format Format
		marker string
	}{
		{FormatDOT, "digraph G {"},
		{"DOT", "digraph G {"},
		{FormatSVG, "<svg"},
		{FormatPNG, "\x89PNG"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			out, err := Render(context.Background(), dot, tt.format)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !bytes.Contains(out, []byte(tt.marker)) {
				t.Errorf("output %.60q lacks %q", out, tt.marker)
			}
		})
	}
}

func TestRenderSVGPixelUnits(t *testing.T) {
	svg, err := Render(context.Background(), ToDOT(tree(t), Options{}), FormatSVG)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(svg, []byte(`pt"`)) {
		t.Errorf("svg still sized in points: %.300s", svg)
	}
}

func TestRenderErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Render(ctx, "digraph {", FormatSVG); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad DOT: err = %v, want INVALID_INPUT", err)
	}
	if _, err := Render(ctx, "digraph {}", "pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("pdf: err = %v, want INVALID_FORMAT", err)
	}
}

func TestPixelUnits(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00"><text width="3pt"/></svg>`)
	want := `<svg width="62" height="44" viewBox="0.00 0.00 62.00 44.00"><text width="3pt"/></svg>`
	if got := string(pixelUnits(in)); got != want {
		t.Errorf("pixelUnits =\n%s\nwant\n%s", got, want)
	}
	if plain := []byte("<svg><g/></svg>"); !bytes.Equal(pixelUnits(plain), plain) {
		t.Error("svg without sizes changed")
	}
}

func ExampleLabel() {
	c, _ := cell.NewSolid(16, 8, "#ff8800")
	fmt.Println(strings.ReplaceAll(Label(c), "\n", " | "))
	// Output: solid | 16x8 | #ff8800
}

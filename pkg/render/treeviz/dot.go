package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/boardtex/pkg/cell"
	"github.com/matzehuels/boardtex/pkg/errors"
)

// Options configures tree rendering.
type Options struct {
	// Offsets labels each edge with the child's local position.
	Offsets bool

	// MaxDepth stops the walk below this depth; 0 draws the whole tree.
	MaxDepth int
}

// ToDOT converts the tree rooted at root to Graphviz DOT source.
// Nodes are numbered in depth-first order, so equal trees give equal output.
func ToDOT(root cell.Cell, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#666666\"];\n")
	buf.WriteString("\n")

	var edges []string
	next := 0
	var visit func(c cell.Cell, depth int) string
	visit = func(c cell.Cell, depth int) string {
		id := "n" + strconv.Itoa(next)
		next++
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(c), ", "))
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return id
		}
		for _, ch := range c.Children() {
			childID := visit(ch.Cell, depth+1)
			e := fmt.Sprintf("  %s -> %s", id, childID)
			if opts.Offsets {
				e += fmt.Sprintf(" [label=%q]", ch.Position().String())
			}
			edges = append(edges, e+";\n")
		}
		return id
	}
	if root != nil {
		visit(root, 0)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// Label returns the text shown for c.
func Label(c cell.Cell) string {
	label := c.Kind() + "\n" + c.Size().String()
	if d, ok := c.(cell.Describer); ok {
		if s := d.Describe(); s != "" {
			label += "\n" + s
		}
	}
	return label
}

func fmtAttrs(c cell.Cell) []string {
	attrs := []string{fmt.Sprintf("label=%q", Label(c))}
	if s, ok := c.(*cell.Solid); ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", s.Describe()), fmt.Sprintf("fontcolor=%q", contrast(s)))
	}
	if len(c.Children()) == 0 {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// contrast picks black or white text for a solid fill.
func contrast(s *cell.Solid) string {
	c := s.Color()
	if 299*int(c.R)+587*int(c.G)+114*int(c.B) < 128*1000 {
		return "white"
	}
	return "black"
}

// Format is an output format for [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Render lays out dot with the embedded Graphviz and encodes it as f.
// FormatDOT returns dot unchanged.
func Render(ctx context.Context, dot string, f Format) ([]byte, error) {
	switch Format(strings.ToLower(string(f))) {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		out, err := layout(ctx, dot, graphviz.SVG)
		if err != nil {
			return nil, err
		}
		return pixelUnits(out), nil
	case FormatPNG:
		return layout(ctx, dot, graphviz.PNG)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown tree format %q (want svg, dot or png)", f)
}

func layout(ctx context.Context, dot string, f graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "start graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, f, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", f)
	}
	return buf.Bytes(), nil
}

var ptSize = regexp.MustCompile(`(width|height)="([0-9.]+)pt"`)

// pixelUnits rewrites the root element's point sizes as unitless pixel
// sizes, so a browser shows the diagram at its layout size.
func pixelUnits(svg []byte) []byte {
	done := 0
	return ptSize.ReplaceAllFunc(svg, func(m []byte) []byte {
		if done == 2 {
			return m
		}
		done++
		sub := ptSize.FindSubmatch(m)
		v, err := strconv.ParseFloat(string(sub[2]), 64)
		if err != nil {
			return m
		}
		return []byte(fmt.Sprintf(`%s="%.0f"`, sub[1], v))
	})
}

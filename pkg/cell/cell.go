package cell

import (
	"context"
	"image"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// Cell is a fixed-size unit of 2D image content.
//
// Cells are created fully formed by the constructors in this package; size
// and children never change afterwards.
type Cell interface {
	// Kind names the cell type ("solid", "row", "bleed", ...).
	Kind() string

	// Size returns the constructed width and height.
	Size() geom.Size

	// Children returns the positioned children in composition order.
	Children() []Child

	// Parent returns the owning cell, or nil for a root.
	Parent() Cell

	// LocalPosition is the offset from the parent's origin; (0,0) for a root.
	LocalPosition() geom.Point

	// GlobalPosition is the offset from the root's origin.
	GlobalPosition() geom.Point

	// CenterUV is the cell's centre in the root's normalized [0,1] space.
	CenterUV() (u, v float64)

	// Render produces a fresh w×h buffer.
	Render(ctx context.Context) (*image.NRGBA, error)

	base() *node
}

// Child is a cell positioned inside its parent.
type Child struct {
	Cell Cell
	Left int
	Top  int
}

// Position returns the child's local offset.
func (c Child) Position() geom.Point { return geom.Point{X: c.Left, Y: c.Top} }

// At positions c inside a canvas.
func At(c Cell, left, top int) Child {
	return Child{Cell: c, Left: left, Top: top}
}

// Describer is implemented by cells that can summarize their content,
// e.g. the colour of a solid cell or the source file of an image cell.
type Describer interface {
	Describe() string
}

// node carries the state every cell shares.
type node struct {
	self     Cell
	kind     string
	size     geom.Size
	children []Child
	parent   *node
	local    geom.Point
	owned    atomic.Bool
}

func newNode(kind string, w, h int) (*node, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimension,
			"%s: width and height must be positive, got %dx%d", kind, w, h)
	}
	return &node{kind: kind, size: geom.Size{W: w, H: h}}, nil
}

// adopt claims every child for n. On failure all claims made by this call
// are released and n is left without children.
func (n *node) adopt(children []Child) error {
	for i, ch := range children {
		if ch.Cell == nil {
			n.release(children[:i])
			return errors.New(errors.ErrCodeInvalidInput, "%s: child %d is nil", n.kind, i)
		}
		if !ch.Cell.base().owned.CompareAndSwap(false, true) {
			n.release(children[:i])
			return errors.New(errors.ErrCodeOwnershipViolation,
				"%s: child %d (%s) already has an owner", n.kind, i, ch.Cell.Kind())
		}
	}
	n.children = make([]Child, len(children))
	copy(n.children, children)
	for _, ch := range n.children {
		cb := ch.Cell.base()
		cb.parent = n
		cb.local = ch.Position()
	}
	return nil
}

func (n *node) release(children []Child) {
	for _, ch := range children {
		ch.Cell.base().owned.Store(false)
	}
}

func (n *node) base() *node { return n }

// Kind implements Cell.
func (n *node) Kind() string { return n.kind }

// Size implements Cell.
func (n *node) Size() geom.Size { return n.size }

// Children implements Cell.
func (n *node) Children() []Child {
	out := make([]Child, len(n.children))
	copy(out, n.children)
	return out
}

// Parent implements Cell.
func (n *node) Parent() Cell {
	if n.parent == nil {
		return nil
	}
	return n.parent.self
}

// LocalPosition implements Cell.
func (n *node) LocalPosition() geom.Point { return n.local }

// GlobalPosition implements Cell.
func (n *node) GlobalPosition() geom.Point {
	var p geom.Point
	for cur := n; cur != nil; cur = cur.parent {
		p = p.Add(cur.local)
	}
	return p
}

// CenterUV implements Cell.
func (n *node) CenterUV() (u, v float64) {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	g := n.GlobalPosition()
	cx := float64(g.X) + float64(n.size.W)/2
	cy := float64(g.Y) + float64(n.size.H)/2
	return cx / float64(root.size.W), cy / float64(root.size.H)
}

// renderChildren renders every child of n concurrently, waits for all of
// them, and composites the results onto a transparent canvas of n's size in
// child-list order.
func renderChildren(ctx context.Context, n *node) (*image.NRGBA, error) {
	imgs, err := renderAll(ctx, n.children)
	if err != nil {
		return nil, err
	}
	layers := make([]codec.Layer, len(imgs))
	for i, img := range imgs {
		layers[i] = codec.Layer{Image: img, At: n.children[i].Position()}
	}
	return codec.Composite(n.size.W, n.size.H, layers), nil
}

// renderAll fans out over children and returns their buffers in list order.
// Every buffer is checked against the child's declared size.
func renderAll(ctx context.Context, children []Child) ([]*image.NRGBA, error) {
	imgs := make([]*image.NRGBA, len(children))
	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range children {
		g.Go(func() error {
			img, err := renderChecked(gctx, ch.Cell)
			if err != nil {
				return err
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imgs, nil
}

// renderChecked renders c and verifies the buffer matches c's declared size.
func renderChecked(ctx context.Context, c Cell) (*image.NRGBA, error) {
	img, err := c.Render(ctx)
	if err != nil {
		return nil, err
	}
	if got, want := codec.Size(img), c.Size(); got != want {
		return nil, errors.New(errors.ErrCodeSizeMismatch,
			"%s rendered %s, declared %s", c.Kind(), got, want)
	}
	return img, nil
}

// Walk visits c and its descendants depth-first in child-list order.
// Returning false from fn skips the visited cell's children.
func Walk(c Cell, fn func(c Cell, depth int) bool) {
	walk(c, 0, fn)
}

func walk(c Cell, depth int, fn func(Cell, int) bool) {
	if !fn(c, depth) {
		return
	}
	for _, ch := range c.Children() {
		walk(ch.Cell, depth+1, fn)
	}
}

// Count returns the number of cells in the tree rooted at c.
func Count(c Cell) int {
	n := 0
	Walk(c, func(Cell, int) bool { n++; return true })
	return n
}

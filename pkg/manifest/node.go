package manifest

import (
	"fmt"

	"github.com/matzehuels/boardtex/pkg/cell"
	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
)

// Node describes one cell of a sheet. Which fields apply depends on Kind.
type Node struct {
	Kind string `toml:"kind" json:"kind"`

	Width  int `toml:"width" json:"width,omitempty"`
	Height int `toml:"height" json:"height,omitempty"`

	// Position inside a canvas parent.
	Left int `toml:"left" json:"left,omitempty"`
	Top  int `toml:"top" json:"top,omitempty"`

	// solid
	Color string `toml:"color" json:"color,omitempty"`

	// image
	File      string   `toml:"file" json:"file,omitempty"`
	Alpha     *float64 `toml:"alpha" json:"alpha,omitempty"`
	Tint      string   `toml:"tint" json:"tint,omitempty"`
	Grayscale bool     `toml:"grayscale" json:"grayscale,omitempty"`
	Invert    bool     `toml:"invert" json:"invert,omitempty"`

	// text
	Text        string  `toml:"text" json:"text,omitempty"`
	Font        string  `toml:"font" json:"font,omitempty"`
	FontStyle   string  `toml:"font_style" json:"font_style,omitempty"`
	FontSize    float64 `toml:"font_size" json:"font_size,omitempty"`
	LineSpacing float64 `toml:"line_spacing" json:"line_spacing,omitempty"`

	// composites
	Spacing     int              `toml:"spacing" json:"spacing,omitempty"`
	Cols        int              `toml:"cols" json:"cols,omitempty"`
	Padding     int              `toml:"padding" json:"padding,omitempty"`
	Background  string           `toml:"background" json:"background,omitempty"`
	Bleed       int              `toml:"bleed" json:"bleed,omitempty"`
	FillCorners bool             `toml:"fill_corners" json:"fill_corners,omitempty"`
	Snaps       []cell.SnapPoint `toml:"snap" json:"snap,omitempty"`

	Children []Node `toml:"children" json:"children,omitempty"`
}

// Cell kinds accepted in a manifest.
const (
	KindSolid  = "solid"
	KindImage  = "image"
	KindText   = "text"
	KindCanvas = "canvas"
	KindRow    = "row"
	KindCol    = "col"
	KindGrid   = "grid"
	KindPadded = "padded"
	KindResize = "resize"
	KindBleed  = "bleed"
)

// Builder turns nodes into cells.
type Builder struct {
	// Resolve maps a manifest-relative file path to a filesystem path.
	Resolve func(string) string

	// Loader is shared by every image cell. May be nil.
	Loader *codec.Loader
}

// Build converts the sheet's node tree into a cell tree.
func (m *Manifest) Build(s *Sheet, loader *codec.Loader) (cell.Cell, error) {
	b := &Builder{Resolve: m.Resolve, Loader: loader}
	return b.Build(&s.Root)
}

// Build converts n and its descendants into cells. Errors name the failing
// node's path, e.g. "root.children[2]".
func (b *Builder) Build(n *Node) (cell.Cell, error) {
	return b.build(n, "root")
}

func (b *Builder) build(n *Node, path string) (cell.Cell, error) {
	kids, err := b.children(n, path)
	if err != nil {
		return nil, err
	}

	var c cell.Cell
	switch n.Kind {
	case KindSolid:
		err = b.leaf(n, path)
		if err == nil {
			c, err = cell.NewSolid(n.Width, n.Height, n.Color)
		}
	case KindImage:
		err = b.leaf(n, path)
		if err == nil {
			c, err = b.image(n)
		}
	case KindText:
		err = b.leaf(n, path)
		if err == nil {
			c, err = cell.NewText(n.Width, n.Height, n.Text, cell.TextStyle{
				Family:      n.Font,
				Style:       n.FontStyle,
				Size:        n.FontSize,
				Color:       n.Color,
				LineSpacing: n.LineSpacing,
			})
		}
	case KindCanvas:
		placed := make([]cell.Child, len(kids))
		for i, k := range kids {
			placed[i] = cell.At(k, n.Children[i].Left, n.Children[i].Top)
		}
		c, err = cell.NewCanvas(n.Width, n.Height, placed...)
	case KindRow:
		c, err = cell.NewRow(n.Spacing, kids...)
	case KindCol:
		c, err = cell.NewCol(n.Spacing, kids...)
	case KindGrid:
		if n.Cols == 0 {
			c, err = cell.NewGridAuto(n.Spacing, kids...)
		} else {
			c, err = cell.NewGrid(n.Cols, n.Spacing, kids...)
		}
	case KindPadded:
		if err = single(n, path); err == nil {
			c, err = cell.NewPadded(kids[0], n.Padding, cell.PaddedOptions{Background: n.Background})
		}
	case KindResize:
		if err = single(n, path); err == nil {
			c, err = cell.NewResize(n.Width, n.Height, kids[0], n.Snaps...)
		}
	case KindBleed:
		if err = single(n, path); err == nil {
			opts := cell.BleedOptions{FillCorners: n.FillCorners}
			if n.Bleed == 0 {
				c, err = cell.NewBleedForUVs(kids[0], opts)
			} else {
				c, err = cell.NewBleed(kids[0], n.Bleed, opts)
			}
		}
	case "":
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: kind is required", path)
	default:
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: unknown kind %q", path, n.Kind)
	}
	if err != nil {
		return nil, atPath(err, path)
	}
	return c, nil
}

func (b *Builder) children(n *Node, path string) ([]cell.Cell, error) {
	if len(n.Children) == 0 {
		return nil, nil
	}
	kids := make([]cell.Cell, len(n.Children))
	for i := range n.Children {
		k, err := b.build(&n.Children[i], fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		kids[i] = k
	}
	return kids, nil
}

func (b *Builder) image(n *Node) (cell.Cell, error) {
	file := n.File
	if b.Resolve != nil {
		file = b.Resolve(file)
	}
	opts := cell.ImageOptions{
		Alpha:     n.Alpha,
		Tint:      n.Tint,
		Grayscale: n.Grayscale,
		Invert:    n.Invert,
		Loader:    b.Loader,
	}
	if n.Width == 0 && n.Height == 0 {
		return cell.ImageFrom(file, opts)
	}
	return cell.NewImage(n.Width, n.Height, file, opts)
}

func (b *Builder) leaf(n *Node, path string) error {
	if len(n.Children) > 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "%s: %s cells take no children", path, n.Kind)
	}
	return nil
}

func single(n *Node, path string) error {
	if len(n.Children) != 1 {
		return errors.New(errors.ErrCodeInvalidManifest, "%s: %s takes exactly one child, got %d", path, n.Kind, len(n.Children))
	}
	return nil
}

// atPath prefixes err with the node path, keeping its code.
func atPath(err error, path string) error {
	if errors.Is(err, errors.ErrCodeInvalidManifest) {
		return err
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInvalidManifest
	}
	return errors.Wrap(code, err, "%s", path)
}

// Files returns every image file referenced below n, unresolved, in tree
// order.
func (n *Node) Files() []string {
	var out []string
	if n.Kind == KindImage && n.File != "" {
		out = append(out, n.File)
	}
	for i := range n.Children {
		out = append(out, n.Children[i].Files()...)
	}
	return out
}

func (n *Node) validatePaths(path string) error {
	if n.Kind == KindImage {
		if err := errors.ValidatePath(n.File); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "%s", path)
		}
	}
	for i := range n.Children {
		if err := n.Children[i].validatePaths(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

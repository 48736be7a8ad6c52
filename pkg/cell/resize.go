package cell

import (
	"context"
	"image"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
)

// SnapPoint is a point of interest in a cell's local pixel space.
// Rotation and Tags are carried through unchanged.
type SnapPoint struct {
	Left     float64  `json:"left" toml:"left"`
	Top      float64  `json:"top" toml:"top"`
	Rotation float64  `json:"rotation,omitempty" toml:"rotation"`
	Tags     []string `json:"tags,omitempty" toml:"tags"`
}

// SnapPointer is implemented by cells that carry snap points.
type SnapPointer interface {
	SnapPoints() []SnapPoint
}

// Resize renders its child and resamples it to a fixed size without
// preserving the aspect ratio.
type Resize struct {
	*node
	snaps []SnapPoint
}

// NewResize creates a w×h cell around child. Snap points inherited from
// child (when it is a SnapPointer) and the explicit snaps, both expressed
// in the child's pixel space, are scaled by w/childW and h/childH.
func NewResize(w, h int, child Cell, snaps ...SnapPoint) (*Resize, error) {
	if child == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "resize: child is nil")
	}
	n, err := newNode("resize", w, h)
	if err != nil {
		return nil, err
	}
	if err := n.adopt([]Child{{Cell: child}}); err != nil {
		return nil, err
	}

	var all []SnapPoint
	if sp, ok := child.(SnapPointer); ok {
		all = append(all, sp.SnapPoints()...)
	}
	all = append(all, snaps...)

	cs := child.Size()
	sx := float64(w) / float64(cs.W)
	sy := float64(h) / float64(cs.H)
	scaled := make([]SnapPoint, len(all))
	for i, p := range all {
		scaled[i] = SnapPoint{
			Left:     p.Left * sx,
			Top:      p.Top * sy,
			Rotation: p.Rotation,
			Tags:     append([]string(nil), p.Tags...),
		}
	}

	r := &Resize{node: n, snaps: scaled}
	n.self = r
	return r, nil
}

// SnapPoints returns the scaled snap points.
func (r *Resize) SnapPoints() []SnapPoint {
	out := make([]SnapPoint, len(r.snaps))
	copy(out, r.snaps)
	return out
}

// Render implements Cell.
func (r *Resize) Render(ctx context.Context) (*image.NRGBA, error) {
	img, err := renderChecked(ctx, r.children[0].Cell)
	if err != nil {
		return nil, err
	}
	return codec.Resize(img, r.size.W, r.size.H), nil
}

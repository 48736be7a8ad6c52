package geom

import "fmt"

// Size is a width/height pair in pixels.
type Size struct {
	W int `json:"width"`
	H int `json:"height"`
}

// Positive reports whether both dimensions are strictly positive.
func (s Size) Positive() bool { return s.W > 0 && s.H > 0 }

// Area returns W*H.
func (s Size) Area() int { return s.W * s.H }

// FitWithin scales s down so neither side exceeds maxDim, keeping the aspect
// ratio. A single scale of maxDim/longest is applied to both sides and the
// results are floored (never below 1). Sizes already within bounds, or a
// non-positive maxDim, are returned unchanged.
func (s Size) FitWithin(maxDim int) Size {
	longest := max(s.W, s.H)
	if maxDim <= 0 || longest <= maxDim {
		return s
	}
	return Size{
		W: max(1, s.W*maxDim/longest),
		H: max(1, s.H*maxDim/longest),
	}
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Point is a position in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Rect is an axis-aligned pixel rectangle given by its top-left corner and size.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Top + r.Height }

// Size returns the rectangle's extent.
func (r Rect) Size() Size { return Size{r.Width, r.Height} }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Empty() && !o.Empty() &&
		r.Left < o.Right() && o.Left < r.Right() &&
		r.Top < o.Bottom() && o.Top < r.Bottom()
}

// UV converts r into fractions of a texture of the given size.
func (r Rect) UV(full Size) UVRect {
	fw, fh := float64(full.W), float64(full.H)
	return UVRect{
		Left:   float64(r.Left) / fw,
		Top:    float64(r.Top) / fh,
		Width:  float64(r.Width) / fw,
		Height: float64(r.Height) / fh,
	}
}

// Scale maps r into a texture whose size relates to the current one by
// num/den, flooring the start edge and ceiling the end edge so that adjacent
// rectangles stay adjacent after scaling.
func (r Rect) Scale(num, den int) Rect {
	left := r.Left * num / den
	top := r.Top * num / den
	right := ceilDiv(r.Right()*num, den)
	bottom := ceilDiv(r.Bottom()*num, den)
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.Left, r.Top, r.Width, r.Height)
}

// UVRect is a rectangle in normalized texture coordinates.
type UVRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the rectangle's centre in UV space.
func (r UVRect) Center() (u, v float64) {
	return r.Left + r.Width/2, r.Top + r.Height/2
}

// SizeF is a physical size in object/world units.
type SizeF struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// ObjectRect places a texture region on a physical object. Offsets are
// measured from the object's centre to the region's centre.
type ObjectRect struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// ObjectRect maps a UV region onto an object of the given size.
func (r UVRect) ObjectRect(obj SizeF) ObjectRect {
	u, v := r.Center()
	return ObjectRect{
		OffsetX: (u - 0.5) * obj.W,
		OffsetY: (v - 0.5) * obj.H,
		Width:   r.Width * obj.W,
		Height:  r.Height * obj.H,
	}
}

// CeilDiv returns ceil(a/b) for non-negative a and positive b.
func CeilDiv(a, b int) int { return ceilDiv(a, b) }

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

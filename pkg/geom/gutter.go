package geom

const (
	// gutterDivisor is the texel count per gutter texel on each side.
	gutterDivisor = 256

	// usableSpan is the interior share of gutterDivisor once both gutters
	// are removed.
	usableSpan = gutterDivisor - 2
)

// InsetForUVs returns the usable interior of a texture of size w×h whose
// outer gutter is implicit. Both offsets are floor(dimension/256).
func InsetForUVs(w, h int) Rect {
	left := w / gutterDivisor
	top := h / gutterDivisor
	return Rect{
		Left:   left,
		Top:    top,
		Width:  w - 2*left,
		Height: h - 2*top,
	}
}

// OutsetForUVs is the inverse of [InsetForUVs]: given an interior size it
// returns the outer texture size (Width/Height) and the margin that
// separates the interior from the outer edge (Left/Top).
//
// The round trip InsetForUVs(OutsetForUVs(w, h)) reproduces (w, h) within
// one pixel; exact equality is not guaranteed.
func OutsetForUVs(w, h int) Rect {
	outerW := outset(w)
	outerH := outset(h)
	return Rect{
		Left:   (outerW - w) / 2,
		Top:    (outerH - h) / 2,
		Width:  outerW,
		Height: outerH,
	}
}

// outset floors inner*256/254. With inner = 254m + r the result is
// 256m + r (+1 when 2r >= 254), so the inset of the result is always m.
func outset(inner int) int {
	return inner * gutterDivisor / usableSpan
}

// GutterFor returns the per-side bleed that brings a w×h interior up to its
// outset size: the larger of the two outset margins, and at least one pixel.
// A 2032×2032 tile gets 8, matching a 2048 texture.
func GutterFor(w, h int) int {
	o := OutsetForUVs(w, h)
	return max(o.Left, o.Top, 1)
}

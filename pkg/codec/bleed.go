package codec

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Clone returns a fresh NRGBA copy of img with origin (0,0).
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// ExtendEdges returns img framed by px pixels on every side. Each side of the
// frame is filled by stretching the outermost row or column of img across
// the strip with nearest-neighbour sampling, so a flat edge stays exactly
// flat. The four corner squares stay transparent unless fillCorners is set,
// in which case each is painted with the nearest corner pixel of img.
func ExtendEdges(img image.Image, px int, fillCorners bool) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if px <= 0 {
		return Clone(img)
	}
	dst := Blank(w+2*px, h+2*px)
	if w == 0 || h == 0 {
		return dst
	}

	draw.Draw(dst, image.Rect(px, px, px+w, px+h), img, b.Min, draw.Src)

	strips := []struct{ dr, sr image.Rectangle }{
		// top, bottom
		{image.Rect(px, 0, px+w, px), image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+1)},
		{image.Rect(px, px+h, px+w, h+2*px), image.Rect(b.Min.X, b.Max.Y-1, b.Max.X, b.Max.Y)},
		// left, right
		{image.Rect(0, px, px, px+h), image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Max.Y)},
		{image.Rect(px+w, px, w+2*px, px+h), image.Rect(b.Max.X-1, b.Min.Y, b.Max.X, b.Max.Y)},
	}
	for _, s := range strips {
		draw.NearestNeighbor.Scale(dst, s.dr, img, s.sr, draw.Src, nil)
	}

	if fillCorners {
		corners := []struct {
			dr  image.Rectangle
			src image.Point
		}{
			{image.Rect(0, 0, px, px), b.Min},
			{image.Rect(px+w, 0, w+2*px, px), image.Pt(b.Max.X-1, b.Min.Y)},
			{image.Rect(0, px+h, px, h+2*px), image.Pt(b.Min.X, b.Max.Y-1)},
			{image.Rect(px+w, px+h, w+2*px, h+2*px), image.Pt(b.Max.X-1, b.Max.Y-1)},
		}
		for _, c := range corners {
			draw.Draw(dst, c.dr, image.NewUniform(img.At(c.src.X, c.src.Y)), image.Point{}, draw.Src)
		}
	}
	return dst
}

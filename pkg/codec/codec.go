package codec

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// Format is an output encoding.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultJPEGQuality is used when encoding JPEG without an explicit quality.
const DefaultJPEGQuality = 92

// ParseFormat validates a format name. "jpg" is accepted as an alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be png or jpeg)", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// Open decodes the image at path.
// A missing file yields FILE_NOT_FOUND; anything else unreadable yields IO_ERROR.
func Open(path string) (*image.NRGBA, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "stat %s", path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "decode %s", path)
	}
	return imaging.Clone(img), nil
}

// Decode decodes an image from r.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "decode image")
	}
	return imaging.Clone(img), nil
}

// DecodeConfig reads only the header of the image at path.
// Missing or zero dimensions yield BAD_METADATA.
func DecodeConfig(path string) (geom.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return geom.Size{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "image not found: %s", path)
		}
		return geom.Size{}, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return geom.Size{}, errors.Wrap(errors.ErrCodeIO, err, "read metadata of %s", path)
	}
	size := geom.Size{W: cfg.Width, H: cfg.Height}
	if !size.Positive() {
		return geom.Size{}, errors.New(errors.ErrCodeBadMetadata, "%s reports size %s", path, size)
	}
	return size, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(DefaultJPEGQuality))
	case FormatPNG, "":
		err = imaging.Encode(w, img, imaging.PNG)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode %s", f)
	}
	return nil
}

// EncodeBytes is Encode into a fresh byte slice.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Size returns the pixel size of img.
func Size(img image.Image) geom.Size {
	b := img.Bounds()
	return geom.Size{W: b.Dx(), H: b.Dy()}
}

// Resize scales img to exactly w×h without preserving aspect ratio.
func Resize(img image.Image, w, h int) *image.NRGBA {
	if s := Size(img); s.W == w && s.H == h {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// Fit scales img down so neither side exceeds maxDim, keeping the aspect
// ratio. The scale is computed once and both sides are floored. Images
// already within bounds are returned as a copy.
func Fit(img image.Image, maxDim int) *image.NRGBA {
	s := Size(img)
	fit := s.FitWithin(maxDim)
	if fit == s {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, fit.W, fit.H, imaging.Lanczos)
}

// Crop extracts r from img. The result's origin is (0,0).
func Crop(img image.Image, r geom.Rect) *image.NRGBA {
	b := img.Bounds()
	return imaging.Crop(img, image.Rect(
		b.Min.X+r.Left, b.Min.Y+r.Top,
		b.Min.X+r.Right(), b.Min.Y+r.Bottom(),
	))
}

// Fill returns a w×h image filled with c.
func Fill(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

// Blank returns a fully transparent w×h image.
func Blank(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{})
}

// Layer is an image positioned on a canvas.
type Layer struct {
	Image image.Image
	At    geom.Point
}

// Composite draws layers onto a transparent w×h canvas in order with alpha
// "over" blending; later layers draw over earlier ones.
func Composite(w, h int, layers []Layer) *image.NRGBA {
	dst := Blank(w, h)
	for _, l := range layers {
		b := l.Image.Bounds()
		r := image.Rectangle{Min: image.Pt(l.At.X, l.At.Y)}
		r.Max = r.Min.Add(b.Size())
		draw.Draw(dst, r, l.Image, b.Min, draw.Over)
	}
	return dst
}

// Grayscale returns a grayscale copy of img.
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// Invert returns a copy of img with inverted colour channels.
func Invert(img image.Image) *image.NRGBA {
	return imaging.Invert(img)
}

// Tint multiplies every colour channel by the matching channel of c.
func Tint(img image.Image, c color.NRGBA) *image.NRGBA {
	return imaging.AdjustFunc(img, func(p color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: mul8(p.R, c.R),
			G: mul8(p.G, c.G),
			B: mul8(p.B, c.B),
			A: p.A,
		}
	})
}

// Opacity scales the alpha channel by alpha in [0,1].
func Opacity(img image.Image, alpha float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(p color.NRGBA) color.NRGBA {
		p.A = uint8(float64(p.A)*alpha + 0.5)
		return p
	})
}

func mul8(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseHexColor parses an opaque "#RRGGBB" colour.
func ParseHexColor(s string) (color.NRGBA, bool) {
	if !hexColorRe.MatchString(s) {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

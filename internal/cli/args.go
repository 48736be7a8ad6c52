package cli

import (
	"strconv"
	"strings"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// parseSize parses "WxH" into a positive pixel size.
func parseSize(s string) (geom.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidInput, "size must be WxH, got %q", s)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidInput, "size must be WxH integers, got %q", s)
	}
	size := geom.Size{W: width, H: height}
	if !size.Positive() {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidDimension, "size must be positive, got %s", size)
	}
	return size, nil
}

// parseSizeF parses "WxH" with fractional parts, e.g. "29.7x21".
func parseSizeF(s string) (geom.SizeF, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geom.SizeF{}, errors.New(errors.ErrCodeInvalidInput, "size must be WxH, got %q", s)
	}
	width, errW := strconv.ParseFloat(w, 64)
	height, errH := strconv.ParseFloat(h, 64)
	if errW != nil || errH != nil {
		return geom.SizeF{}, errors.New(errors.ErrCodeInvalidInput, "size must be WxH numbers, got %q", s)
	}
	if width <= 0 || height <= 0 {
		return geom.SizeF{}, errors.New(errors.ErrCodeInvalidDimension, "size must be positive, got %q", s)
	}
	return geom.SizeF{W: width, H: height}, nil
}

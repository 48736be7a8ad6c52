// Package geom provides the integer pixel geometry shared by cells and the
// tiler, plus the UV gutter conversions used to keep texture gutters
// consistent between bled cells and split tiles.
//
// # Coordinate System
//
// Origin (0,0) is the top-left corner; X grows right and Y grows down.
// UV rectangles are fractions of a texture's full extent in [0,1].
//
// # Gutters
//
// [InsetForUVs] and [OutsetForUVs] implement a fixed gutter convention of one
// texel per 128-texel half tile: the inset is floor(dimension/256) on each
// side. The constants and floor rounding are load-bearing; downstream mesh
// UV mapping depends on bit-for-bit reproducible offsets.
package geom

// Package tiler splits oversized images into bounded, independently bled
// chunks for GPUs with a hard texture size limit.
//
// A split runs in two phases. [Plan] is pure arithmetic: it validates the
// options, optionally pre-shrinks the source size, and lays a grid of
// chunks over it in column-major order. Every chunk carries its pixel
// rectangle in source space, the same rectangle as UV fractions of the full
// source, and (given a physical object size) its placement on the object.
// The rectangles tile the source exactly; no pixel belongs to two chunks.
//
// [Split] then extracts each chunk, extends its outermost pixels outward by
// the gutter so neighbouring textures sample cleanly under filtering, and
// pairs it with the matching region of an optional mask image. Chunks are
// processed concurrently and only ever read the shared source.
//
// All validation happens before any chunk is touched, so a doomed split
// never produces partial output.
package tiler

// Package codec is the narrow raster contract the cell tree and the tiler
// depend on: decode from files or bytes, encode to PNG or JPEG, resize with a
// non aspect-preserving fill, crop, composite positioned layers with alpha
// blending, grayscale/invert/tint/opacity filters, and metadata queries.
//
// All operations return fresh *image.NRGBA buffers and never mutate their
// inputs, which is what makes concurrent rendering over shared sources safe.
//
// # Loading
//
// [Loader] memoizes decoded files in a bounded ristretto cache keyed by path
// and modification time, and bounds concurrent decodes with a weighted
// semaphore:
//
//	l, err := codec.NewLoader(codec.LoaderOptions{MaxDecodes: 4})
//	img, err := l.Load(ctx, "cards/front.png")
package codec

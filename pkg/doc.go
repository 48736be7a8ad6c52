// Package pkg provides the core libraries for boardtex.
//
// # Overview
//
// boardtex composes game assets for tabletop engines. Card sheets are built
// from trees of image cells and rendered to one texture; large boards are
// cut into tiles with bleed gutters so texture filtering never samples a
// neighbour's pixels.
//
// The typical data flow:
//
//	TOML manifest
//	     ↓
//	[manifest] (sheets and splits)
//	     ↓                    ↓
//	[cell] tree          [tiler] grid plan
//	     ↓                    ↓
//	render (RGBA)        bled tiles + JSON index
//	     ↓                    ↓
//	[pipeline] (encode, cache, write)
//
// # Quick Start
//
// Compose and render a sheet directly:
//
//	a, _ := cell.NewSolid(250, 350, "#aa3300")
//	b, _ := cell.ImageFrom("cards/ace.png", cell.ImageOptions{})
//	sheet, _ := cell.NewGridAuto(4, a, b)
//	img, _ := sheet.Render(ctx)
//
// Split a board:
//
//	res, _ := tiler.SplitFile(ctx, nil, "board.png", "", tiler.Options{
//	    ChunkSize: 2032,
//	    Gutter:    8,
//	})
//	index, _ := res.Manifest()
//
// # Packages
//
//   - [geom]: sizes, rectangles, UV and gutter math
//   - [codec]: image decode, encode, filters and a cached [codec.Loader]
//   - [fonts]: embedded Go fonts for text cells
//   - [cell]: the cell tree, leaf and composite cells, grid layout, bleed
//   - [tiler]: chunk planning and per-tile bleed for large images
//   - [manifest]: TOML build manifests
//   - [pipeline]: cached execution of manifest jobs
//   - [cache]: file, redis, in-memory and null artifact caches
//   - [observability]: optional hooks for metrics and progress
//   - [render/treeviz]: Graphviz view of a cell tree for debugging
//   - [errors]: coded errors shared by every package
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include redis integration tests
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/geom
// [codec]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/codec
// [codec.Loader]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/codec#Loader
// [fonts]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/fonts
// [cell]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/cell
// [tiler]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/tiler
// [manifest]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/observability
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/render/treeviz
// [errors]: https://pkg.go.dev/github.com/matzehuels/boardtex/pkg/errors
package pkg

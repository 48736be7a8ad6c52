// Package render holds debugging views of cell trees.
//
// The [treeviz] subpackage draws a tree's structure as a Graphviz diagram:
// one box per cell with its kind, size and a short content summary, and one
// edge per parent/child link labelled with the child's offset.
//
//	dot := treeviz.ToDOT(root, treeviz.Options{Offsets: true})
//	svg, err := treeviz.Render(ctx, dot, treeviz.FormatSVG)
//
// [treeviz]: github.com/matzehuels/boardtex/pkg/render/treeviz
package render

// Package cell implements the image-cell composition tree.
//
// A [Cell] is a fixed-size rectangle that can render itself to an NRGBA
// buffer. Leaf cells ([NewSolid], [NewBuffer], [NewImage], [NewText],
// [NewFunc]) produce pixels directly; composite cells ([NewCanvas], [NewRow],
// [NewCol], [NewGrid], [NewPadded], [NewResize], [NewBleed]) compute their
// size from their children and compose the children's renders.
//
// # Ownership
//
// The tree is a tree, not a DAG. Passing a cell to a composite constructor
// moves it into that composite; any later attempt to attach the same cell
// elsewhere fails with OWNERSHIP_VIOLATION. A constructor that fails releases
// every child it had already claimed, so the caller may reuse them.
//
// # Rendering
//
// Render is idempotent and never mutates the tree. Composite cells render
// their children concurrently, wait for all of them, and then composite in
// child-list order, so the output is deterministic regardless of scheduling:
//
//	row, err := cell.NewRow(4, a, b, c)
//	img, err := row.Render(ctx)
//
// # Coordinates
//
// A child's local position is relative to its parent's top-left corner;
// its global position is the sum of local positions up to the root.
// [Cell.CenterUV] expresses a cell's centre in the root's normalized space
// for downstream UV consumers.
package cell

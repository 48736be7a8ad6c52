// Package treeviz renders cell trees as node-link diagrams.
//
// [ToDOT] produces Graphviz DOT source; [Render] lays it out as SVG or PNG
// in-process with [github.com/goccy/go-graphviz], so no Graphviz
// installation is needed.
//
// Solid leaves are filled with their own colour. Image and text leaves show
// their file name or (truncated) text below the kind and size.
package treeviz

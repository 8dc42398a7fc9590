// Package render exports matrix configurations as graph visualizations.
//
// # Overview
//
// The matrix view is the primary surface, but a configuration is still a
// directed graph over its visible nodes, and a node-link diagram of that
// graph is often the easiest thing to drop into a document. This package
// produces Graphviz DOT for the visible dependency structure and renders
// it to SVG in-process.
//
//	dot := render.ToDOT(m, cfg, g, render.Options{})
//	svg, err := render.SVG(dot)
//
// Synthetic grouping nodes are drawn with dashed outlines and grey fill
// to distinguish them from real nodes; the focus anchor's subtree is
// drawn with a highlighted border. Edge labels carry the aggregated
// weights from the matrix cells, so the diagram and the matrix always
// agree.
//
// SVG rendering uses [github.com/goccy/go-graphviz], a WASM build of
// Graphviz, so no external binary is needed.
package render

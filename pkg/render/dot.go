package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/matrix"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes node IDs alongside display labels and annotates
	// the focus anchor. When false, only display labels are shown.
	Detailed bool

	// HideWeights omits edge weight labels.
	HideWeights bool
}

// ToDOT converts a built matrix and its configuration into Graphviz DOT.
// Every visible node becomes a box; every nonzero off-diagonal cell
// becomes an edge labeled with its aggregated weight. The resulting
// string can be rendered with [SVG].
func ToDOT(m matrix.Matrix, cfg matrix.Configuration, g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range m.Nodes {
		attrs := nodeAttrs(id, cfg, g, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, from := range m.Nodes {
		for j, to := range m.Nodes {
			w := m.Weight(i, j)
			if i == j || w == 0 {
				continue
			}
			if opts.HideWeights {
				fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", from, to, strconv.Itoa(w))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id string, cfg matrix.Configuration, g *graph.Graph, opts Options) []string {
	label := id
	var group, anchored bool
	if n, ok := g.Node(id); ok {
		label = n.DisplayLabel()
		group = n.IsGroup()
	}
	if cfg.Focused() {
		anchored = id == cfg.Anchor || g.IsDescendant(id, cfg.Anchor)
	}
	if opts.Detailed && label != id {
		label = label + "\n" + id
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case group:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case anchored:
		attrs = append(attrs, "penwidth=2", "color=\"#2563eb\"")
	}
	return attrs
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element to a zero-origin
// viewBox with explicit pixel dimensions, which embeds more predictably
// in HTML contexts.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

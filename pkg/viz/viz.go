// Package viz renders collision graphs as node-link diagrams.
//
// A collision graph is undirected, so edges render without arrowheads.
// Nodes are colored by part type, using a fixed palette cycled over the
// type ids, and labeled with the same letters the structure encoding uses.
// DOT output can be saved for external Graphviz tooling or rendered to SVG
// in process.
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/PeterZhouSZ/string2shape/pkg/codec"
	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
)

// palette holds the fill colors cycled over part types.
var palette = []string{
	"lightblue", "lightcoral", "lightgreen", "khaki",
	"plum", "lightsalmon", "paleturquoise", "lightgray",
}

// Options configures diagram generation.
type Options struct {
	// Detailed includes node ids and material names alongside the type
	// letters.
	Detailed bool
}

// ToDOT converts a collision graph to Graphviz DOT format. types must hold
// one part type per node; a nil types slice falls back to the graph's own
// type annotation.
func ToDOT(g *graph.Graph, types []int, opts Options) string {
	if types == nil {
		types = g.Types
	}
	var buf bytes.Buffer
	buf.WriteString("graph structure {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=14];\n")
	buf.WriteString("\n")

	for i := 0; i < g.NumNodes(); i++ {
		t := 0
		if i < len(types) {
			t = types[i]
		}
		label := codec.TypeSymbol(t)
		if opts.Detailed {
			if name := wfobject.TypeName(t); name != "" {
				label = fmt.Sprintf("%s\n%s\n#%d", label, name, i)
			} else {
				label = fmt.Sprintf("%s\n#%d", label, i)
			}
		}
		fmt.Fprintf(&buf, "  n%d [label=%q, fillcolor=%s];\n", i, label, fillColor(t))
	}

	buf.WriteString("\n")
	for _, e := range g.UniqueEdges() {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e.U, e.V)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fillColor(t int) string {
	if t < 0 {
		t = -t
	}
	return palette[t%len(palette)]
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	return buf.Bytes(), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

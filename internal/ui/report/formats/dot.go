package formats

import (
	"fmt"
	"strings"

	"repograph/internal/engine/graph"
)

type DOTGenerator struct {
	graph           *graph.Graph
	includeIsolated bool
}

func NewDOTGenerator(g *graph.Graph) *DOTGenerator {
	return &DOTGenerator{graph: g}
}

// SetIncludeIsolated draws files that have no imports in either direction.
func (d *DOTGenerator) SetIncludeIsolated(include bool) {
	d.includeIsolated = include
}

func (d *DOTGenerator) Generate(cycles []graph.Cycle) (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  overlap=false;\n\n")

	cycleEdges := cycleEdgeSet(cycles)
	cycleNodes := cycleNodeSet(cycles)
	nodes := visibleNodes(d.graph, d.includeIsolated)
	dirs, groups := groupByDirectory(nodes)

	for i, dir := range dirs {
		indent := "  "
		if dir != "" {
			buf.WriteString(fmt.Sprintf("  subgraph cluster_%d {\n", i))
			buf.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeLabel(dir)))
			buf.WriteString("    style=dashed;\n")
			buf.WriteString("    color=\"grey\";\n")
			indent = "    "
		}
		for _, node := range groups[dir] {
			if cycleNodes[node.ID] {
				buf.WriteString(fmt.Sprintf("%s\"%s\" [label=\"%s\", fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n",
					indent, escapeLabel(node.ID), escapeLabel(node.Name)))
				continue
			}
			buf.WriteString(fmt.Sprintf("%s\"%s\" [label=\"%s\", fillcolor=\"%s\", color=\"darkslategrey\"];\n",
				indent, escapeLabel(node.ID), escapeLabel(node.Name), node.Color))
		}
		if dir != "" {
			buf.WriteString("  }\n")
		}
	}
	buf.WriteString("\n")

	for _, edge := range d.graph.Edges() {
		if cycleEdges[edge] {
			buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n",
				escapeLabel(edge.Source), escapeLabel(edge.Target)))
			continue
		}
		buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"forestgreen\"];\n",
			escapeLabel(edge.Source), escapeLabel(edge.Target)))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

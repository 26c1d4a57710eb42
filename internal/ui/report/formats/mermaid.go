package formats

import (
	"fmt"
	"strconv"
	"strings"

	"repograph/internal/engine/graph"
)

type MermaidGenerator struct {
	graph           *graph.Graph
	includeIsolated bool
}

func NewMermaidGenerator(g *graph.Graph) *MermaidGenerator {
	return &MermaidGenerator{graph: g}
}

func (m *MermaidGenerator) SetIncludeIsolated(include bool) {
	m.includeIsolated = include
}

// Generate renders a left-to-right flowchart with one subgraph per
// directory. Edges on a cycle are drawn in red.
func (m *MermaidGenerator) Generate(cycles []graph.Cycle) (string, error) {
	var b strings.Builder
	b.WriteString("%%{init: {'theme': 'base', 'flowchart': {'nodeSpacing': 60, 'rankSpacing': 90, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	nodes := visibleNodes(m.graph, m.includeIsolated)
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.ID)
	}
	used := make(idSet, len(names))
	ids := makeIDsIn(used, names, "")
	dirs, groups := groupByDirectory(nodes)
	dirIDs := makeIDsIn(used, dirs, "dir_")
	cycleNodes := cycleNodeSet(cycles)
	cycleEdges := cycleEdgeSet(cycles)

	for _, dir := range dirs {
		indent := "  "
		if dir != "" {
			b.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", dirIDs[dir], escapeLabel(dir)))
			indent = "    "
		}
		for _, node := range groups[dir] {
			b.WriteString(fmt.Sprintf("%s%s[\"%s\"]\n", indent, ids[node.ID], escapeLabel(node.Name)))
		}
		if dir != "" {
			b.WriteString("  end\n")
		}
	}

	cycleLinks := make([]string, 0)
	link := 0
	for _, edge := range m.graph.Edges() {
		from, okFrom := ids[edge.Source]
		to, okTo := ids[edge.Target]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s --> %s\n", from, to))
		if cycleEdges[edge] {
			cycleLinks = append(cycleLinks, strconv.Itoa(link))
		}
		link++
	}

	inCycle := make([]string, 0)
	for _, node := range nodes {
		if cycleNodes[node.ID] {
			inCycle = append(inCycle, ids[node.ID])
		}
	}
	if len(inCycle) > 0 {
		b.WriteString("\n  classDef cycleNode fill:#ffe4e1,stroke:#d00000,stroke-width:2px,color:#000000;\n")
		b.WriteString("  class " + strings.Join(inCycle, ",") + " cycleNode;\n")
	}
	if len(cycleLinks) > 0 {
		b.WriteString("  linkStyle " + strings.Join(cycleLinks, ",") + " stroke:#d00000,stroke-width:3px;\n")
	}
	return b.String(), nil
}

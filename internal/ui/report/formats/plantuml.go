package formats

import (
	"fmt"
	"strings"

	"repograph/internal/engine/graph"
)

type PlantUMLGenerator struct {
	graph           *graph.Graph
	includeIsolated bool
}

func NewPlantUMLGenerator(g *graph.Graph) *PlantUMLGenerator {
	return &PlantUMLGenerator{graph: g}
}

// SetIncludeIsolated draws files that have no imports in either direction.
func (p *PlantUMLGenerator) SetIncludeIsolated(include bool) {
	p.includeIsolated = include
}

// Generate draws one package per directory. Component labels carry fan-in
// and fan-out; cycle edges are red.
func (p *PlantUMLGenerator) Generate(cycles []graph.Cycle) (string, error) {
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("skinparam componentStyle rectangle\n")
	b.WriteString("skinparam packageStyle rectangle\n")
	b.WriteString("skinparam linetype ortho\n")
	b.WriteString("skinparam nodesep 80\n")
	b.WriteString("skinparam ranksep 100\n")
	b.WriteString("left to right direction\n\n")

	nodes := visibleNodes(p.graph, p.includeIsolated)
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.ID)
	}
	aliases := makeIDs(names)
	cycleEdges := cycleEdgeSet(cycles)
	cycleNodes := cycleNodeSet(cycles)
	dirs, groups := groupByDirectory(nodes)

	for _, dir := range dirs {
		indent := ""
		if dir != "" {
			b.WriteString(fmt.Sprintf("package \"%s\" {\n", escapeLabel(dir)))
			indent = "  "
		}
		for _, node := range groups[dir] {
			color := node.Color
			if cycleNodes[node.ID] {
				color = "#FFE4E1"
			}
			b.WriteString(fmt.Sprintf("%scomponent \"%s\\nin:%d out:%d\" as %s %s\n",
				indent, escapeLabel(node.Name), len(node.ImportedBy), len(node.Imports), aliases[node.ID], color))
		}
		if dir != "" {
			b.WriteString("}\n")
		}
	}

	b.WriteString("\n")
	for _, edge := range p.graph.Edges() {
		from, okFrom := aliases[edge.Source]
		to, okTo := aliases[edge.Target]
		if !okFrom || !okTo {
			continue
		}
		if cycleEdges[edge] {
			b.WriteString(fmt.Sprintf("%s -[#red,thickness=2]-> %s : CYCLE\n", from, to))
			continue
		}
		b.WriteString(fmt.Sprintf("%s --> %s\n", from, to))
	}

	b.WriteString("\nlegend right\n")
	b.WriteString("|= Item |= Meaning |\n")
	b.WriteString("|in|Files importing this file|\n")
	b.WriteString("|out|Files this file imports|\n")
	if len(cycleEdges) > 0 {
		b.WriteString("|<color:#cc0000>Red edge</color>|Cycle edge|\n")
	}
	b.WriteString("endlegend\n")

	b.WriteString("\n@enduml\n")
	return b.String(), nil
}

package formats

import (
	"fmt"
	"strings"

	"repograph/internal/engine/graph"
)

type TSVGenerator struct {
	graph *graph.Graph
}

func NewTSVGenerator(g *graph.Graph) *TSVGenerator {
	return &TSVGenerator{graph: g}
}

// Generate lists every edge in insertion order.
func (t *TSVGenerator) Generate(cycles []graph.Cycle) (string, error) {
	var buf strings.Builder
	cycleEdges := cycleEdgeSet(cycles)

	buf.WriteString("Source\tTarget\tInCycle\n")
	for _, edge := range t.graph.Edges() {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%t\n", edge.Source, edge.Target, cycleEdges[edge]))
	}
	return buf.String(), nil
}

// GenerateNodes lists every file with its degree counts.
func (t *TSVGenerator) GenerateNodes() (string, error) {
	var buf strings.Builder

	buf.WriteString("Path\tExtension\tSize\tImports\tImportedBy\n")
	for _, node := range t.graph.Nodes() {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%d\t%d\n",
			node.ID, node.Extension, node.Size, len(node.Imports), len(node.ImportedBy)))
	}
	return buf.String(), nil
}

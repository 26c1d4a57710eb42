package graph

import (
	"repograph/internal/shared/observability"
)

// Builder owns a graph while edges are being added. Build hands the graph
// over and leaves the builder inert.
type Builder struct {
	g     *Graph
	edges map[Edge]struct{}
}

// NewBuilder creates one node per file entry, in listing order. Directory
// entries and repeated paths are skipped.
func NewBuilder(entries []FileEntry) *Builder {
	g := &Graph{
		nodes: make(map[string]*Node, len(entries)),
		order: make([]string, 0, len(entries)),
	}
	for _, entry := range entries {
		if entry.Kind != KindFile || entry.Path == "" {
			continue
		}
		if _, dup := g.nodes[entry.Path]; dup {
			continue
		}
		g.nodes[entry.Path] = newNode(entry)
		g.order = append(g.order, entry.Path)
	}
	return &Builder{g: g, edges: make(map[Edge]struct{})}
}

// Paths returns the node ids in listing order.
func (b *Builder) Paths() []string {
	if b.g == nil {
		return nil
	}
	return append([]string{}, b.g.order...)
}

// AddImports records source -> target for every resolved target. Self
// references, unknown ids and repeats are ignored. It returns the number of
// new edges.
func (b *Builder) AddImports(source string, targets []string) int {
	if b.g == nil {
		return 0
	}
	src, ok := b.g.nodes[source]
	if !ok {
		return 0
	}

	added := 0
	for _, target := range targets {
		if target == source {
			continue
		}
		dst, ok := b.g.nodes[target]
		if !ok {
			continue
		}
		edge := Edge{Source: source, Target: target}
		if _, seen := b.edges[edge]; seen {
			continue
		}
		// imports and importedBy are two views of one edge and move together.
		b.edges[edge] = struct{}{}
		src.Imports = append(src.Imports, target)
		dst.ImportedBy = append(dst.ImportedBy, source)
		b.g.edges = append(b.g.edges, edge)
		added++
	}
	return added
}

// Build freezes the graph.
func (b *Builder) Build() *Graph {
	g := b.g
	b.g = nil
	b.edges = nil
	if g == nil {
		return &Graph{nodes: map[string]*Node{}}
	}
	observability.GraphNodes.Set(float64(len(g.order)))
	observability.GraphEdges.Set(float64(len(g.edges)))
	return g
}

package graph

import (
	"strings"
)

type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// FileEntry is one item of a repository listing.
type FileEntry struct {
	Path string    `json:"path"`
	Kind EntryKind `json:"kind"`
	Size int64     `json:"size"`
}

// Node is one source file and its adjacency in the import graph.
type Node struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Extension  string   `json:"ext"`
	Size       int64    `json:"size"`
	Directory  string   `json:"directory"`
	Imports    []string `json:"imports"`
	ImportedBy []string `json:"importedBy"`
	Color      string   `json:"color"`
}

// Edge is a directed import from Source to Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Cycle is a closed import chain whose last element repeats the first.
type Cycle []string

// Graph is the frozen result of a Builder. All accessors return copies.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

func newNode(entry FileEntry) *Node {
	name := entry.Path
	dir := ""
	if idx := strings.LastIndex(entry.Path, "/"); idx >= 0 {
		name = entry.Path[idx+1:]
		dir = entry.Path[:idx]
	}
	ext := ""
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		ext = strings.ToLower(name[idx+1:])
	}
	return &Node{
		ID:         entry.Path,
		Name:       name,
		Extension:  ext,
		Size:       entry.Size,
		Directory:  dir,
		Imports:    []string{},
		ImportedBy: []string{},
		Color:      ColorFor(ext),
	}
}

func (n *Node) clone() Node {
	out := *n
	out.Imports = append([]string{}, n.Imports...)
	out.ImportedBy = append([]string{}, n.ImportedBy...)
	return out
}

// Connections is the combined in and out degree of the node.
func (n Node) Connections() int {
	return len(n.Imports) + len(n.ImportedBy)
}

func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns every node in listing order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].clone())
	}
	return out
}

// Edges returns edges in discovery order.
func (g *Graph) Edges() []Edge {
	return append([]Edge{}, g.edges...)
}

func (g *Graph) NodeCount() int {
	return len(g.order)
}

func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

func (g *Graph) HasEdge(source, target string) bool {
	n, ok := g.nodes[source]
	if !ok {
		return false
	}
	return containsString(n.Imports, target)
}

// TotalSize sums the byte size of every node.
func (g *Graph) TotalSize() int64 {
	var total int64
	for _, id := range g.order {
		total += g.nodes[id].Size
	}
	return total
}

// ConnectedCount is the number of nodes touching at least one edge.
func (g *Graph) ConnectedCount() int {
	count := 0
	for _, id := range g.order {
		if g.nodes[id].Connections() > 0 {
			count++
		}
	}
	return count
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

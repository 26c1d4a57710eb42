package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(paths ...string) []FileEntry {
	entries := make([]FileEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, FileEntry{Path: p, Kind: KindFile, Size: 10})
	}
	return entries
}

func TestNewBuilder_Nodes(t *testing.T) {
	entries := []FileEntry{
		{Path: "src", Kind: KindDirectory},
		{Path: "src/App.TSX", Kind: KindFile, Size: 120},
		{Path: "Makefile", Kind: KindFile, Size: 7},
		{Path: "pkg/api/.env", Kind: KindFile, Size: 3},
		{Path: "src/App.TSX", Kind: KindFile, Size: 999},
	}
	g := NewBuilder(entries).Build()

	require.Equal(t, 3, g.NodeCount())
	assert.False(t, g.Has("src"))

	app, ok := g.Node("src/App.TSX")
	require.True(t, ok)
	assert.Equal(t, "App.TSX", app.Name)
	assert.Equal(t, "tsx", app.Extension)
	assert.Equal(t, "src", app.Directory)
	assert.Equal(t, int64(120), app.Size)
	assert.Equal(t, "#61dafb", app.Color)
	assert.Empty(t, app.Imports)
	assert.Empty(t, app.ImportedBy)

	mk, _ := g.Node("Makefile")
	assert.Equal(t, "", mk.Extension)
	assert.Equal(t, "", mk.Directory)
	assert.Equal(t, DefaultColor, mk.Color)

	env, _ := g.Node("pkg/api/.env")
	assert.Equal(t, "env", env.Extension)
	assert.Equal(t, "pkg/api", env.Directory)

	assert.Equal(t, int64(130), g.TotalSize())
}

func TestBuilder_AddImports_DedupAndSymmetry(t *testing.T) {
	b := NewBuilder(files("a.ts", "b.ts", "c.ts"))

	added := b.AddImports("a.ts", []string{"b.ts", "b.ts", "a.ts", "missing.ts", "c.ts"})
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, b.AddImports("a.ts", []string{"b.ts"}))
	assert.Equal(t, 0, b.AddImports("ghost.ts", []string{"a.ts"}))
	assert.Equal(t, 1, b.AddImports("c.ts", []string{"a.ts"}))

	g := b.Build()
	assert.Equal(t, []Edge{
		{Source: "a.ts", Target: "b.ts"},
		{Source: "a.ts", Target: "c.ts"},
		{Source: "c.ts", Target: "a.ts"},
	}, g.Edges())

	a, _ := g.Node("a.ts")
	assert.Equal(t, []string{"b.ts", "c.ts"}, a.Imports)
	assert.Equal(t, []string{"c.ts"}, a.ImportedBy)

	assertSymmetric(t, g)
	assertNoSelfEdges(t, g)
	assert.Equal(t, 3, g.ConnectedCount())
}

func TestBuilder_InertAfterBuild(t *testing.T) {
	b := NewBuilder(files("a.ts", "b.ts"))
	g := b.Build()
	assert.Equal(t, 0, b.AddImports("a.ts", []string{"b.ts"}))
	assert.Equal(t, 0, g.EdgeCount())
	assert.Nil(t, b.Paths())
}

func TestGraph_AccessorsReturnCopies(t *testing.T) {
	b := NewBuilder(files("a.ts", "b.ts"))
	b.AddImports("a.ts", []string{"b.ts"})
	g := b.Build()

	n, _ := g.Node("a.ts")
	n.Imports[0] = "tampered"
	nodes := g.Nodes()
	nodes[0].ImportedBy = append(nodes[0].ImportedBy, "x")
	edges := g.Edges()
	edges[0].Target = "tampered"

	again, _ := g.Node("a.ts")
	assert.Equal(t, []string{"b.ts"}, again.Imports)
	assert.True(t, g.HasEdge("a.ts", "b.ts"))
	assert.Equal(t, "b.ts", g.Edges()[0].Target)
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#00ADD8", ColorFor("go"))
	assert.Equal(t, "#3572A5", ColorFor("py"))
	assert.Equal(t, DefaultColor, ColorFor("zig"))
	assert.Equal(t, DefaultColor, ColorFor(""))
}

func assertSymmetric(t *testing.T, g *Graph) {
	t.Helper()
	for _, n := range g.Nodes() {
		for _, target := range n.Imports {
			other, ok := g.Node(target)
			require.True(t, ok)
			assert.Contains(t, other.ImportedBy, n.ID)
		}
		for _, source := range n.ImportedBy {
			other, ok := g.Node(source)
			require.True(t, ok)
			assert.Contains(t, other.Imports, n.ID)
		}
	}
}

func assertNoSelfEdges(t *testing.T, g *Graph) {
	t.Helper()
	for _, n := range g.Nodes() {
		assert.NotContains(t, n.Imports, n.ID)
	}
}

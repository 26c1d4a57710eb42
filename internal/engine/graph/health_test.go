package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_CleanRepo(t *testing.T) {
	g := buildGraph(t, []string{"src/a.ts", "src/b.ts", "README.md"}, map[string][]string{
		"src/a.ts": {"src/b.ts"},
	})
	s := Summarize(g, nil, DefaultScoreConfig())

	assert.Equal(t, 100, s.HealthScore)
	assert.Equal(t, 3, s.TotalFiles)
	assert.Equal(t, int64(30), s.TotalSize)
	assert.Equal(t, 2, s.CodeFiles)
	assert.Equal(t, 1, s.Dependencies)
	assert.Equal(t, 2, s.ConnectedFiles)
	assert.InDelta(t, 0.5, s.AverageDeps, 1e-9)
	assert.False(t, s.HasTests)
	assert.Equal(t, 0, s.CircularDeps)
	assert.Equal(t, 0, s.GodFiles)
}

func TestScore_Penalties(t *testing.T) {
	// hub.ts is imported by 16 files: a god file. The leaves import 1 each (avg < 5).
	paths := []string{"src/hub.ts"}
	edges := map[string][]string{}
	for i := 0; i < 16; i++ {
		p := fmt.Sprintf("src/leaf%02d.ts", i)
		paths = append(paths, p)
		edges[p] = []string{"src/hub.ts"}
	}
	g := buildGraph(t, paths, edges)

	cycles := []Cycle{{"x", "y", "x"}, {"y", "z", "y"}}
	s := Summarize(g, cycles, DefaultScoreConfig())
	assert.Equal(t, 1, s.GodFiles)
	assert.Equal(t, 2, s.CircularDeps)
	assert.Equal(t, 100-20-8, s.HealthScore)

	strict := DefaultScoreConfig()
	strict.GodFileThreshold = 16
	assert.Equal(t, 100-20, Score(g, cycles, strict))
}

func TestScore_GodFilesBeyondHotspotList(t *testing.T) {
	// 11 hubs, each imported by all 16 leaves: more god files than TopHotspots(10) returns.
	var hubs, paths []string
	for i := 0; i < 11; i++ {
		hubs = append(hubs, fmt.Sprintf("src/hub%02d.ts", i))
	}
	paths = append(paths, hubs...)
	edges := map[string][]string{}
	for i := 0; i < 16; i++ {
		p := fmt.Sprintf("src/leaf%02d.ts", i)
		paths = append(paths, p)
		edges[p] = hubs
	}
	g := buildGraph(t, paths, edges)

	s := Summarize(g, nil, DefaultScoreConfig())
	assert.Equal(t, 11, s.GodFiles)
	assert.Len(t, g.TopHotspots(10), 10)
	// 176 edges over 27 code files puts coupling above 5 as well.
	assert.Equal(t, 100-11*8-10, s.HealthScore)
}

func TestScore_CouplingAndTests(t *testing.T) {
	paths := []string{"a.go", "b.go", "c.go", "d.go", "e.go", "f.go", "g.go", "internal/x_test.go"}
	edges := map[string][]string{
		"a.go": {"b.go", "c.go", "d.go", "e.go", "f.go", "g.go"},
		"b.go": {"a.go", "c.go", "d.go", "e.go", "f.go", "g.go"},
	}
	g := buildGraph(t, paths, edges)

	s := Summarize(g, nil, ScoreConfig{CouplingThreshold: 1})
	assert.InDelta(t, 12.0/8.0, s.AverageDeps, 1e-9)
	assert.True(t, s.HasTests)
	// -10 coupling, +5 tests.
	assert.Equal(t, 95, s.HealthScore)
}

func TestScore_Clamped(t *testing.T) {
	g := buildGraph(t, []string{"spec/a.ts"}, nil)

	assert.Equal(t, 100, Score(g, nil, DefaultScoreConfig()))

	many := make([]Cycle, 12)
	assert.Equal(t, 0, Score(g, many, DefaultScoreConfig()))
}

func TestTopHotspots(t *testing.T) {
	g := buildGraph(t, []string{"a.ts", "b.ts", "c.ts", "lonely.ts"}, map[string][]string{
		"a.ts": {"b.ts", "c.ts"},
		"b.ts": {"c.ts"},
	})

	hs := g.TopHotspots(10)
	assert.Len(t, hs, 3)
	// a, b and c each have two connections; ties are ordered by path.
	assert.Equal(t, []string{"a.ts", "b.ts", "c.ts"}, []string{hs[0].Path, hs[1].Path, hs[2].Path})
	assert.Equal(t, 2, hs[0].FanOut)
	assert.Equal(t, 2, hs[2].FanIn)

	assert.Len(t, g.TopHotspots(1), 1)
	assert.Nil(t, g.TopHotspots(0))
}

package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeImpact(t *testing.T) {
	g := buildGraph(t, []string{"lib.ts", "a.ts", "b.ts", "app.ts", "other.ts"}, map[string][]string{
		"a.ts":   {"lib.ts"},
		"b.ts":   {"lib.ts", "a.ts"},
		"app.ts": {"b.ts"},
		"lib.ts": {"other.ts"},
	})

	report, err := g.AnalyzeImpact("lib.ts")
	require.NoError(t, err)
	assert.Equal(t, "lib.ts", report.TargetPath)
	assert.Equal(t, []string{"a.ts", "b.ts"}, report.DirectImporters)
	assert.Equal(t, []string{"app.ts"}, report.TransitiveImporters)
	assert.Equal(t, []string{"other.ts"}, report.DirectImports)
}

func TestAnalyzeImpact_CycleDoesNotIncludeTarget(t *testing.T) {
	g := buildGraph(t, []string{"a.ts", "b.ts"}, map[string][]string{
		"a.ts": {"b.ts"},
		"b.ts": {"a.ts"},
	})
	report, err := g.AnalyzeImpact("a.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.ts"}, report.DirectImporters)
	assert.Empty(t, report.TransitiveImporters)
}

func TestAnalyzeImpact_Unknown(t *testing.T) {
	g := buildGraph(t, []string{"a.ts"}, nil)
	_, err := g.AnalyzeImpact("missing.ts")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImpactTargetNotFound))
	var target *ImpactTargetError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "missing.ts", target.Target)
}

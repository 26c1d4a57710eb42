package graph

import "strings"

const (
	DefaultGodFileThreshold  = 15
	DefaultCouplingThreshold = 5.0

	scoreStart        = 100
	cyclePenalty      = 10
	godFilePenalty    = 8
	couplingPenalty   = 10
	testPresenceBonus = 5
)

// ScoreConfig carries the heuristic thresholds of the health score.
type ScoreConfig struct {
	GodFileThreshold  int
	CouplingThreshold float64
	CodeExtensions    []string
}

func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		GodFileThreshold:  DefaultGodFileThreshold,
		CouplingThreshold: DefaultCouplingThreshold,
		CodeExtensions:    []string{"ts", "tsx", "js", "jsx", "py", "go", "rs", "css"},
	}
}

// Summary is the set of aggregate metrics derived from a finished graph.
type Summary struct {
	TotalFiles     int     `json:"totalFiles"`
	TotalSize      int64   `json:"totalSize"`
	CodeFiles      int     `json:"codeFiles"`
	Dependencies   int     `json:"dependencies"`
	ConnectedFiles int     `json:"connectedFiles"`
	AverageDeps    float64 `json:"averageDeps"`
	HealthScore    int     `json:"healthScore"`
	HasTests       bool    `json:"hasTests"`
	CircularDeps   int     `json:"circularDeps"`
	GodFiles       int     `json:"godFiles"`
}

// Summarize computes every metric in one pass. It does not touch g.
//
// God files are counted over every node whose connections exceed the
// threshold, not only over the top hotspots, so the god-file penalty is not
// bounded by the hotspot list length.
func Summarize(g *Graph, cycles []Cycle, cfg ScoreConfig) Summary {
	cfg = withScoreDefaults(cfg)
	codeFiles, avg := averageCoupling(g, cfg.CodeExtensions)
	hasTests := HasTests(g)
	godFiles := len(g.GodFiles(cfg.GodFileThreshold))

	return Summary{
		TotalFiles:     g.NodeCount(),
		TotalSize:      g.TotalSize(),
		CodeFiles:      codeFiles,
		Dependencies:   g.EdgeCount(),
		ConnectedFiles: g.ConnectedCount(),
		AverageDeps:    avg,
		HealthScore:    score(len(cycles), godFiles, avg, hasTests, cfg),
		HasTests:       hasTests,
		CircularDeps:   len(cycles),
		GodFiles:       godFiles,
	}
}

// Score returns the 0-100 health score for g.
func Score(g *Graph, cycles []Cycle, cfg ScoreConfig) int {
	return Summarize(g, cycles, cfg).HealthScore
}

func score(cycles, godFiles int, avg float64, hasTests bool, cfg ScoreConfig) int {
	s := scoreStart
	s -= cycles * cyclePenalty
	s -= godFiles * godFilePenalty
	if avg > cfg.CouplingThreshold {
		s -= couplingPenalty
	}
	if hasTests {
		s += testPresenceBonus
	}
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// averageCoupling is the mean out-degree over nodes with a code extension.
func averageCoupling(g *Graph, codeExtensions []string) (int, float64) {
	codeSet := make(map[string]bool, len(codeExtensions))
	for _, ext := range codeExtensions {
		codeSet[ext] = true
	}
	count, out := 0, 0
	for _, id := range g.order {
		node := g.nodes[id]
		if !codeSet[node.Extension] {
			continue
		}
		count++
		out += len(node.Imports)
	}
	if count == 0 {
		return 0, 0
	}
	return count, float64(out) / float64(count)
}

// HasTests reports whether any path mentions test, spec or __tests__.
func HasTests(g *Graph) bool {
	for _, id := range g.order {
		if strings.Contains(id, "test") || strings.Contains(id, "spec") || strings.Contains(id, "__tests__") {
			return true
		}
	}
	return false
}

func withScoreDefaults(cfg ScoreConfig) ScoreConfig {
	def := DefaultScoreConfig()
	if cfg.GodFileThreshold <= 0 {
		cfg.GodFileThreshold = def.GodFileThreshold
	}
	if cfg.CouplingThreshold <= 0 {
		cfg.CouplingThreshold = def.CouplingThreshold
	}
	if len(cfg.CodeExtensions) == 0 {
		cfg.CodeExtensions = def.CodeExtensions
	}
	return cfg
}

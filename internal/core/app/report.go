package app

import (
	"context"
	"log/slog"
	"time"

	"repograph/internal/data/history"
	"repograph/internal/engine/graph"

	"github.com/google/uuid"
)

// Report is the summary served by the analyze endpoint and the CLI.
type Report struct {
	Repo          string           `json:"repo"`
	RunID         string           `json:"runId"`
	Summary       graph.Summary    `json:"summary"`
	Languages     map[string]int64 `json:"languages"`
	Hotspots      []graph.Hotspot  `json:"hotspots"`
	Cycles        []graph.Cycle    `json:"cycles"`
	GodFiles      []string         `json:"godFiles"`
	Edges         int              `json:"edges"`
	AnalyzedFiles int              `json:"analyzedFiles"`
	SkippedFiles  int              `json:"skippedFiles"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

// ScoreConfig maps the analysis thresholds onto the scorer's settings.
func (a *Analyzer) ScoreConfig() graph.ScoreConfig {
	return graph.ScoreConfig{
		GodFileThreshold:  a.cfg.Analysis.GodFileThreshold,
		CouplingThreshold: a.cfg.Analysis.CouplingThreshold,
		CodeExtensions:    a.cfg.Analysis.ScoreExtensions,
	}
}

// BuildReport derives the summary and hotspots from a finished analysis.
func BuildReport(repo string, analysis *Analysis, cfg graph.ScoreConfig, hotspotLimit int) Report {
	g := analysis.Graph
	hotspots := g.TopHotspots(hotspotLimit)
	if hotspots == nil {
		hotspots = []graph.Hotspot{}
	}
	threshold := cfg.GodFileThreshold
	if threshold <= 0 {
		threshold = graph.DefaultGodFileThreshold
	}
	return Report{
		Repo:          repo,
		RunID:         uuid.NewString(),
		Summary:       graph.Summarize(g, analysis.Cycles, cfg),
		Languages:     analysis.Languages,
		Hotspots:      hotspots,
		Cycles:        analysis.Cycles,
		GodFiles:      g.GodFiles(threshold),
		Edges:         g.EdgeCount(),
		AnalyzedFiles: analysis.AnalyzedFiles,
		SkippedFiles:  analysis.SkippedFiles,
		GeneratedAt:   time.Now().UTC(),
	}
}

// Report analyzes owner/repo and summarizes it. A configured history store
// receives a snapshot; failing to save one is logged, not returned.
func (a *Analyzer) Report(ctx context.Context, owner, repo string) (Report, *Analysis, error) {
	analysis, err := a.Analyze(ctx, owner, repo)
	if err != nil {
		return Report{}, nil, err
	}
	report := BuildReport(owner+"/"+repo, analysis, a.ScoreConfig(), a.cfg.Analysis.HotspotLimit)

	if a.history != nil {
		if err := a.history.SaveSnapshot(ctx, SnapshotOf(report)); err != nil {
			slog.Warn("failed to save history snapshot", "repo", report.Repo, "error", err)
		}
	}
	return report, analysis, nil
}

// History lists stored snapshots of repo taken at or after since.
func (a *Analyzer) History(ctx context.Context, repo string, since time.Time) ([]history.Snapshot, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.LoadSnapshots(ctx, repo, since)
}

func SnapshotOf(report Report) history.Snapshot {
	return history.Snapshot{
		SchemaVersion:  history.SchemaVersion,
		RunID:          report.RunID,
		Repo:           report.Repo,
		Timestamp:      report.GeneratedAt,
		TotalFiles:     report.Summary.TotalFiles,
		CodeFiles:      report.Summary.CodeFiles,
		AnalyzedFiles:  report.AnalyzedFiles,
		Dependencies:   report.Summary.Dependencies,
		ConnectedFiles: report.Summary.ConnectedFiles,
		CycleCount:     report.Summary.CircularDeps,
		GodFiles:       report.Summary.GodFiles,
		AverageDeps:    report.Summary.AverageDeps,
		HasTests:       report.Summary.HasTests,
		HealthScore:    report.Summary.HealthScore,
	}
}

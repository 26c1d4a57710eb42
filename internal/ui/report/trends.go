package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"repograph/internal/data/history"
)

// RenderHistoryTSV lists snapshots oldest first with the change in health
// score and cycle count against the previous row.
func RenderHistoryTSV(snapshots []history.Snapshot) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRunID\tFiles\tCodeFiles\tAnalyzed\tDependencies\tCycles\tGodFiles\tAvgDeps\tHealth\tDeltaHealth\tDeltaCycles\n")
	for i, s := range snapshots {
		deltaHealth, deltaCycles := 0, 0
		if i > 0 {
			deltaHealth = s.HealthScore - snapshots[i-1].HealthScore
			deltaCycles = s.CycleCount - snapshots[i-1].CycleCount
		}
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%d\t%+d\t%+d\n",
			s.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			s.RunID,
			s.TotalFiles,
			s.CodeFiles,
			s.AnalyzedFiles,
			s.Dependencies,
			s.CycleCount,
			s.GodFiles,
			s.AverageDeps,
			s.HealthScore,
			deltaHealth,
			deltaCycles,
		))
	}

	return []byte(buf.String()), nil
}

func RenderHistoryJSON(snapshots []history.Snapshot) ([]byte, error) {
	if snapshots == nil {
		snapshots = []history.Snapshot{}
	}
	return json.MarshalIndent(snapshots, "", "  ")
}

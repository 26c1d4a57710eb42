package history

import "time"

const SchemaVersion = 1

// Snapshot is the persisted summary of one analysis run.
type Snapshot struct {
	SchemaVersion  int       `json:"schema_version"`
	RunID          string    `json:"run_id"`
	Repo           string    `json:"repo"`
	Timestamp      time.Time `json:"timestamp"`
	TotalFiles     int       `json:"total_files"`
	CodeFiles      int       `json:"code_files"`
	AnalyzedFiles  int       `json:"analyzed_files"`
	Dependencies   int       `json:"dependencies"`
	ConnectedFiles int       `json:"connected_files"`
	CycleCount     int       `json:"cycle_count"`
	GodFiles       int       `json:"god_files"`
	AverageDeps    float64   `json:"average_deps"`
	HasTests       bool      `json:"has_tests"`
	HealthScore    int       `json:"health_score"`
}

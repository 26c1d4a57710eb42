package app

import (
	"context"
	"fmt"
	"time"

	"repograph/internal/shared/util"
)

// healthProbeRepo is a key no real analysis produces; loading it exercises the store.
const healthProbeRepo = "_health/probe"

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	analyzer *Analyzer
}

func NewHealthService(analyzer *Analyzer) *HealthService {
	return &HealthService{analyzer: analyzer}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.analyzer == nil || s.analyzer.source == nil {
		status.Status = "degraded"
		status.Components["source"] = "missing"
		return status
	}
	status.Components["source"] = fmt.Sprintf("ok (%s)", s.analyzer.name)
	status.Components["matchers"] = fmt.Sprintf("ok (%d languages)", len(s.analyzer.registry.Languages()))
	status.Components["memory"] = util.ReadHeapStats().String()

	if s.analyzer.history != nil {
		if _, err := s.analyzer.history.LoadSnapshots(ctx, healthProbeRepo, time.Now().UTC()); err != nil {
			status.Status = "degraded"
			status.Components["history"] = "error: " + err.Error()
		} else {
			status.Components["history"] = "ok"
		}
	} else if s.analyzer.cfg.History.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"repograph/internal/core/app"
	domainerrors "repograph/internal/core/errors"
	"repograph/internal/ui/report"
)

const (
	msgMissingRepo = "Missing 'repo' parameter. Use ?repo=owner/repo"
	msgInvalidRepo = "Invalid repo format. Use owner/repo"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.health.Check(r.Context())
	code := http.StatusOK
	if status.Status != "up" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	owner, repo, ok := repoParam(w, r)
	if !ok {
		return
	}
	rep, _, err := s.analyzer.Report(r.Context(), owner, repo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	owner, repo, ok := repoParam(w, r)
	if !ok {
		return
	}
	rep, analysis, err := s.analyzer.Report(r.Context(), owner, repo)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := report.Render(format, rep, analysis, s.version)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleHistory lists stored snapshots. since accepts RFC 3339 or a Go
// duration counted back from now; empty lists everything.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	owner, repo, ok := repoParam(w, r)
	if !ok {
		return
	}
	since, err := parseSince(r.URL.Query().Get("since"), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	snapshots, err := s.analyzer.History(r.Context(), owner+"/"+repo, since)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := report.RenderHistoryJSON(snapshots)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func repoParam(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	raw := r.URL.Query().Get("repo")
	if strings.TrimSpace(raw) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgMissingRepo})
		return "", "", false
	}
	owner, repo, err := app.ParseRepo(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgInvalidRepo})
		return "", "", false
	}
	return owner, repo, true
}

func parseSince(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domainerrors.New(domainerrors.CodeValidationError,
			"invalid since, use RFC 3339 or a duration such as 720h")
	}
	return t, nil
}

func statusFor(err error) int {
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeValidationError:
		return http.StatusBadRequest
	case domainerrors.CodeNotFound:
		return http.StatusNotFound
	case domainerrors.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	message := err.Error()
	var domainErr *domainerrors.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	writeJSON(w, code, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}

package graph

import "strings"

// CalculateImportanceScore ranks a file's architectural significance:
//
//	Score = (FanIn * 2) + (FanOut * 1) + (IsEntrySurface ? 10 : 0)
func CalculateImportanceScore(fanIn, fanOut int, path string) float64 {
	score := float64(fanIn*2) + float64(fanOut)
	if isEntrySurface(path) {
		score += 10
	}
	return score
}

// isEntrySurface reports whether the path looks like a public entry point.
func isEntrySurface(path string) bool {
	lower := strings.ToLower(path)
	keywords := []string{"api", "gateway", "handler", "server", "service", "route"}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

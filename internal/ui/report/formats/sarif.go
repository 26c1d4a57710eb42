package formats

import (
	"encoding/json"
	"fmt"
	"strings"

	"repograph/internal/engine/graph"
)

// SARIF v2.1.0 schema: https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDCycle   = "RG001"
	ruleIDGodFile = "RG002"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

// GenerateSARIF reports cycles as errors and god files as warnings. Paths
// are repository-relative, so every location is anchored at %SRCROOT%.
func GenerateSARIF(g *graph.Graph, cycles []graph.Cycle, godFiles []string, version string) ([]byte, error) {
	results := make([]sarifResult, 0, len(cycles)+len(godFiles))

	for _, cycle := range cycles {
		result := sarifResult{
			RuleID:  ruleIDCycle,
			Level:   "error",
			Message: sarifMessage{Text: "Circular dependency: " + strings.Join(cycle, " -> ")},
		}
		if len(cycle) > 0 {
			result.Locations = []sarifLocation{fileLocation(cycle[0])}
		}
		results = append(results, result)
	}

	for _, path := range godFiles {
		connections := 0
		if node, ok := g.Node(path); ok {
			connections = node.Connections()
		}
		results = append(results, sarifResult{
			RuleID:    ruleIDGodFile,
			Level:     "warning",
			Message:   sarifMessage{Text: fmt.Sprintf("File has %d import connections", connections)},
			Locations: []sarifLocation{fileLocation(path)},
		})
	}

	if version == "" {
		version = "unknown"
	}
	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "repograph",
						Version: version,
						Rules:   buildSARIFRules(len(cycles) > 0, len(godFiles) > 0),
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(report, "", "  ")
}

// buildSARIFRules returns only the rules that have findings.
func buildSARIFRules(hasCycles, hasGodFiles bool) []sarifRule {
	rules := make([]sarifRule, 0, 2)
	if hasCycles {
		rules = append(rules, sarifRule{
			ID:               ruleIDCycle,
			Name:             "CircularDependency",
			ShortDescription: sarifMessage{Text: "Circular import dependency detected between files."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}
	if hasGodFiles {
		rules = append(rules, sarifRule{
			ID:               ruleIDGodFile,
			Name:             "GodFile",
			ShortDescription: sarifMessage{Text: "File participates in more imports than the configured threshold."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}
	return rules
}

func fileLocation(path string) sarifLocation {
	return sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       path,
				URIBaseID: "%SRCROOT%",
			},
		},
	}
}

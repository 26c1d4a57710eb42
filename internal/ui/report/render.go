package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"repograph/internal/core/app"
	domainerrors "repograph/internal/core/errors"
	"repograph/internal/ui/report/formats"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatDOT      Format = "dot"
	FormatMermaid  Format = "mermaid"
	FormatTSV      Format = "tsv"
	FormatMarkdown Format = "markdown"
	FormatPlantUML Format = "plantuml"
	FormatSARIF    Format = "sarif"
	FormatNodes    Format = "nodes"
)

var supportedFormats = []Format{FormatJSON, FormatDOT, FormatMermaid, FormatTSV, FormatMarkdown, FormatPlantUML, FormatSARIF, FormatNodes}

// Document is the JSON rendering: the summary next to the full graph.
type Document struct {
	Report   app.Report    `json:"report"`
	Analysis *app.Analysis `json:"analysis"`
}

func ParseFormat(raw string) (Format, error) {
	value := Format(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return FormatJSON, nil
	}
	switch value {
	case "md":
		return FormatMarkdown, nil
	case "puml":
		return FormatPlantUML, nil
	}
	for _, f := range supportedFormats {
		if f == value {
			return f, nil
		}
	}
	return "", domainerrors.New(domainerrors.CodeValidationError,
		fmt.Sprintf("unsupported format %q (expected one of %s)", raw, joinFormats()))
}

func ContentType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatSARIF:
		return "application/sarif+json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatTSV, FormatNodes:
		return "text/tab-separated-values; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Render produces one output artifact for a finished analysis.
func Render(format Format, rep app.Report, analysis *app.Analysis, version string) ([]byte, error) {
	if analysis == nil || analysis.Graph == nil {
		return nil, domainerrors.New(domainerrors.CodeInternal, "render requires a finished analysis")
	}
	g := analysis.Graph

	switch format {
	case FormatJSON:
		return json.MarshalIndent(Document{Report: rep, Analysis: analysis}, "", "  ")
	case FormatDOT:
		out, err := formats.NewDOTGenerator(g).Generate(analysis.Cycles)
		return []byte(out), err
	case FormatMermaid:
		out, err := formats.NewMermaidGenerator(g).Generate(analysis.Cycles)
		return []byte(out), err
	case FormatTSV:
		out, err := formats.NewTSVGenerator(g).Generate(analysis.Cycles)
		return []byte(out), err
	case FormatNodes:
		out, err := formats.NewTSVGenerator(g).GenerateNodes()
		return []byte(out), err
	case FormatPlantUML:
		out, err := formats.NewPlantUMLGenerator(g).Generate(analysis.Cycles)
		return []byte(out), err
	case FormatSARIF:
		return formats.GenerateSARIF(g, analysis.Cycles, rep.GodFiles, version)
	case FormatMarkdown:
		diagram, err := formats.NewMermaidGenerator(g).Generate(analysis.Cycles)
		if err != nil {
			return nil, fmt.Errorf("generate mermaid diagram: %w", err)
		}
		out, err := formats.NewMarkdownGenerator().Generate(
			formats.MarkdownReportData{
				Repo:          rep.Repo,
				Summary:       rep.Summary,
				Languages:     rep.Languages,
				Hotspots:      rep.Hotspots,
				Cycles:        rep.Cycles,
				AnalyzedFiles: rep.AnalyzedFiles,
				SkippedFiles:  rep.SkippedFiles,
			},
			formats.MarkdownReportOptions{
				Version:             version,
				GeneratedAt:         rep.GeneratedAt,
				TableOfContents:     true,
				CollapsibleSections: true,
				MermaidDiagram:      diagram,
			},
		)
		return []byte(out), err
	default:
		return nil, domainerrors.New(domainerrors.CodeNotSupported, fmt.Sprintf("unsupported format %q", format))
	}
}

func joinFormats() string {
	names := make([]string, 0, len(supportedFormats))
	for _, f := range supportedFormats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

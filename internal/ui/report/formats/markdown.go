package formats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"repograph/internal/engine/graph"
	"repograph/internal/shared/util"
)

type MarkdownReportData struct {
	Repo          string
	Summary       graph.Summary
	Languages     map[string]int64
	Hotspots      []graph.Hotspot
	Cycles        []graph.Cycle
	AnalyzedFiles int
	SkippedFiles  int
}

type MarkdownReportOptions struct {
	Version             string
	GeneratedAt         time.Time
	TableOfContents     bool
	CollapsibleSections bool
	MermaidDiagram      string
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data MarkdownReportData, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	includeDiagram := strings.TrimSpace(opts.MermaidDiagram) != ""

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Dependency Report\n")
	b.WriteString("repo: " + nonEmpty(data.Repo, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Dependency Report\n\n")
	if opts.TableOfContents {
		b.WriteString("## Table of Contents\n")
		b.WriteString("- [Summary](#summary)\n")
		b.WriteString("- [Languages](#languages)\n")
		if len(data.Hotspots) > 0 {
			b.WriteString("- [Hotspots](#hotspots)\n")
		}
		b.WriteString("- [Circular Dependencies](#circular-dependencies)\n")
		if includeDiagram {
			b.WriteString("- [Dependency Diagram](#dependency-diagram)\n")
		}
		b.WriteString("\n")
	}

	s := data.Summary
	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Health Score | %d/100 |\n", s.HealthScore))
	b.WriteString(fmt.Sprintf("| Total Files | %d |\n", s.TotalFiles))
	b.WriteString(fmt.Sprintf("| Total Size | %s |\n", formatBytes(s.TotalSize)))
	b.WriteString(fmt.Sprintf("| Code Files | %d |\n", s.CodeFiles))
	b.WriteString(fmt.Sprintf("| Analyzed Files | %d |\n", data.AnalyzedFiles))
	b.WriteString(fmt.Sprintf("| Skipped Files | %d |\n", data.SkippedFiles))
	b.WriteString(fmt.Sprintf("| Dependencies | %d |\n", s.Dependencies))
	b.WriteString(fmt.Sprintf("| Connected Files | %d |\n", s.ConnectedFiles))
	b.WriteString(fmt.Sprintf("| Average Dependencies | %.2f |\n", s.AverageDeps))
	b.WriteString(fmt.Sprintf("| Circular Dependencies | %d |\n", s.CircularDeps))
	b.WriteString(fmt.Sprintf("| God Files | %d |\n", s.GodFiles))
	b.WriteString(fmt.Sprintf("| Has Tests | %s |\n\n", yesNo(s.HasTests)))

	m.writeLanguages(&b, data.Languages)
	m.writeHotspots(&b, data.Hotspots, opts.CollapsibleSections)
	m.writeCycles(&b, data.Cycles, opts.CollapsibleSections)

	if includeDiagram {
		b.WriteString("## Dependency Diagram\n")
		b.WriteString("```mermaid\n")
		b.WriteString(strings.TrimSpace(opts.MermaidDiagram))
		b.WriteString("\n```\n")
	}
	return b.String(), nil
}

func (m *MarkdownGenerator) writeLanguages(b *strings.Builder, languages map[string]int64) {
	b.WriteString("## Languages\n")
	if len(languages) == 0 {
		b.WriteString("No language breakdown available.\n\n")
		return
	}
	var total int64
	for _, bytes := range languages {
		total += bytes
	}
	names := util.SortedStringKeys(languages)
	sort.SliceStable(names, func(i, j int) bool {
		return languages[names[i]] > languages[names[j]]
	})

	b.WriteString("| Language | Bytes | Share |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, name := range names {
		share := 0.0
		if total > 0 {
			share = float64(languages[name]) * 100 / float64(total)
		}
		b.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", name, languages[name], share))
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeHotspots(b *strings.Builder, hotspots []graph.Hotspot, collapsible bool) {
	if len(hotspots) == 0 {
		return
	}
	b.WriteString("## Hotspots\n")
	rows := make([]string, 0, len(hotspots))
	for _, h := range hotspots {
		rows = append(rows, fmt.Sprintf("| `%s` | %d | %d | %d | %.0f |\n", h.Path, h.Connections, h.FanIn, h.FanOut, h.Importance))
	}
	m.writeTableWithCollapse(
		b,
		"Hotspot details",
		collapsible,
		len(rows) > 10,
		[]string{"| File | Connections | Fan-In | Fan-Out | Importance |\n", "| --- | --- | --- | --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeCycles(b *strings.Builder, cycles []graph.Cycle, collapsible bool) {
	b.WriteString("## Circular Dependencies\n")
	if len(cycles) == 0 {
		b.WriteString("No circular dependencies detected.\n\n")
		return
	}
	rows := make([]string, 0, len(cycles))
	for i, cycle := range cycles {
		files := len(cycle) - 1
		impact := "Medium"
		if files >= 4 {
			impact = "High"
		}
		rows = append(rows, fmt.Sprintf("| %d | `%s` | %s | %d |\n", i+1, strings.Join(cycle, " -> "), impact, files))
	}
	m.writeTableWithCollapse(
		b,
		"Cycle details",
		collapsible,
		len(rows) > 10,
		[]string{"| # | Cycle Path | Impact | Files |\n", "| --- | --- | --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeTableWithCollapse(
	b *strings.Builder,
	summary string,
	collapsible bool,
	collapse bool,
	header []string,
	rows []string,
) {
	if collapsible && collapse {
		b.WriteString("<details>\n")
		b.WriteString("<summary>")
		b.WriteString(summary)
		b.WriteString("</summary>\n\n")
	}
	for _, line := range header {
		b.WriteString(line)
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	b.WriteString("\n")
	if collapsible && collapse {
		b.WriteString("</details>\n\n")
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

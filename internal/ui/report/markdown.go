package report

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"repograph/internal/core/app"
	domainerrors "repograph/internal/core/errors"
)

// DiagramMarker names the block the CLI rewrites:
// <!-- repograph:dependencies:start --> ... <!-- repograph:dependencies:end -->
const DiagramMarker = "dependencies"

// InjectMermaid renders the analysis as a fenced Mermaid diagram and writes
// it between the DiagramMarker comments of the Markdown file at path.
func InjectMermaid(path string, rep app.Report, analysis *app.Analysis, version string) error {
	diagram, err := Render(FormatMermaid, rep, analysis, version)
	if err != nil {
		return err
	}
	return InjectDiagram(path, DiagramMarker, mermaidFence(diagram))
}

func mermaidFence(diagram []byte) string {
	return "```mermaid\n" + strings.TrimSpace(string(diagram)) + "\n```"
}

// InjectDiagram replaces the marked block in the file at path with block.
// The file is rewritten through a temp file in the same directory.
func InjectDiagram(path, marker, block string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		code := domainerrors.CodeInternal
		if errors.Is(err, fs.ErrNotExist) {
			code = domainerrors.CodeNotFound
		}
		return domainerrors.AddContext(
			domainerrors.Wrap(err, code, "read markdown file"),
			domainerrors.CtxPath, path)
	}

	next, err := ReplaceBetweenMarkers(string(content), marker, block)
	if err != nil {
		return domainerrors.AddContext(err, domainerrors.CtxPath, path)
	}
	return replaceFile(path, next)
}

func markerPair(marker string) (string, string) {
	return "<!-- repograph:" + marker + ":start -->", "<!-- repograph:" + marker + ":end -->"
}

// ReplaceBetweenMarkers swaps whatever sits between the start and end
// comments of marker for replacement. Each comment must occur exactly once,
// start before end. CRLF documents keep CRLF around the block.
func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", domainerrors.New(domainerrors.CodeValidationError, "markdown marker must not be empty")
	}
	start, end := markerPair(marker)

	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", domainerrors.AddContext(
			domainerrors.New(domainerrors.CodeValidationError, "marker comments must appear exactly once"),
			"marker", marker)
	}
	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", domainerrors.AddContext(
			domainerrors.New(domainerrors.CodeValidationError, "end marker precedes start marker"),
			"marker", marker)
	}

	nl := "\n"
	if strings.Contains(content, "\r\n") {
		nl = "\r\n"
	}
	body := strings.TrimRight(replacement, "\r\n")
	return content[:startIdx+len(start)] + nl + body + nl + content[endIdx:], nil
}

func replaceFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".repograph-inject-*.tmp")
	if err != nil {
		return domainerrors.AddContext(
			domainerrors.Wrap(err, domainerrors.CodeInternal, "create temp file"),
			domainerrors.CtxPath, path)
	}
	name := tmp.Name()

	_, writeErr := tmp.WriteString(content)
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(name, path)
	}
	if writeErr != nil {
		_ = os.Remove(name)
		return domainerrors.AddContext(
			domainerrors.Wrap(writeErr, domainerrors.CodeInternal, "rewrite markdown file"),
			domainerrors.CtxPath, path)
	}
	return nil
}

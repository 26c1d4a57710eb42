package extract

import (
	"regexp"
	"strings"
)

var (
	goSingleImport = regexp.MustCompile(`(?m)^\s*import\s+(?:[A-Za-z_.][\w.]*\s+)?"([^"]+)"`)
	goImportBlock  = regexp.MustCompile(`(?s)import\s*\(([^)]*)\)`)
	goQuoted       = regexp.MustCompile(`"([^"]+)"`)
)

// hostedMarkers flag module paths served from a public code host.
var hostedMarkers = []string{".com/", ".org/", ".io/"}

type goMatcher struct{}

func NewGoMatcher() Matcher { return goMatcher{} }

func (goMatcher) Language() string     { return "go" }
func (goMatcher) Extensions() []string { return []string{".go"} }

func (goMatcher) Specifiers(content string) []string {
	out := make([]string, 0)
	for _, match := range goSingleImport.FindAllStringSubmatch(content, -1) {
		if isProjectLocalGoPath(match[1]) {
			out = append(out, match[1])
		}
	}
	for _, block := range goImportBlock.FindAllStringSubmatch(content, -1) {
		for _, match := range goQuoted.FindAllStringSubmatch(block[1], -1) {
			if isProjectLocalGoPath(match[1]) {
				out = append(out, match[1])
			}
		}
	}
	return out
}

// isProjectLocalGoPath keeps multi-segment paths that are not hosted packages.
func isProjectLocalGoPath(pkg string) bool {
	if !strings.Contains(pkg, "/") {
		return false
	}
	for _, marker := range hostedMarkers {
		if strings.Contains(pkg, marker) {
			return false
		}
	}
	return true
}

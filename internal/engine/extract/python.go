package extract

import (
	"regexp"
	"strings"
)

var pyFromImport = regexp.MustCompile(`(?m)^\s*from\s+(\.+[\w.]*)\s+import\b`)

type pythonMatcher struct{}

func NewPythonMatcher() Matcher { return pythonMatcher{} }

func (pythonMatcher) Language() string     { return "python" }
func (pythonMatcher) Extensions() []string { return []string{".py"} }

// Specifiers returns explicit relative imports rewritten as relative paths:
// ".mod" becomes "./mod" and "..pkg.mod" becomes "../pkg/mod".
func (pythonMatcher) Specifiers(content string) []string {
	out := make([]string, 0)
	for _, match := range pyFromImport.FindAllStringSubmatch(content, -1) {
		out = append(out, pythonRelativePath(match[1]))
	}
	return out
}

func pythonRelativePath(spec string) string {
	rest := strings.TrimLeft(spec, ".")
	dots := len(spec) - len(rest)

	prefix := "./"
	if dots > 1 {
		prefix = strings.Repeat("../", dots-1)
	}
	if rest == "" {
		return strings.TrimSuffix(prefix, "/")
	}
	return prefix + strings.ReplaceAll(rest, ".", "/")
}

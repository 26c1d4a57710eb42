package extract

import (
	"path"
	"sort"
	"strings"
)

// Matcher produces raw import specifiers from the text of one file.
type Matcher interface {
	Language() string
	Extensions() []string
	Specifiers(content string) []string
}

// Registry dispatches files to matchers by extension and drops specifiers
// that cannot refer to files inside the repository.
type Registry struct {
	byExt       map[string]Matcher
	aliasPrefix string
}

func NewRegistry(aliasPrefix string) *Registry {
	return &Registry{
		byExt:       make(map[string]Matcher),
		aliasPrefix: aliasPrefix,
	}
}

// DefaultRegistry registers the JS/TS, CSS, Go and Python matchers.
func DefaultRegistry(aliasPrefix string) *Registry {
	r := NewRegistry(aliasPrefix)
	r.Register(NewJavaScriptMatcher())
	r.Register(NewCSSMatcher())
	r.Register(NewGoMatcher())
	r.Register(NewPythonMatcher())
	return r
}

// Register adds m for each of its extensions, replacing earlier matchers.
func (r *Registry) Register(m Matcher) {
	for _, ext := range m.Extensions() {
		r.byExt[normalizeExt(ext)] = m
	}
}

// MatcherFor returns the matcher registered for filePath's extension.
func (r *Registry) MatcherFor(filePath string) (Matcher, bool) {
	m, ok := r.byExt[normalizeExt(path.Ext(filePath))]
	return m, ok
}

func (r *Registry) Supports(filePath string) bool {
	_, ok := r.MatcherFor(filePath)
	return ok
}

// Languages lists the registered language names, sorted.
func (r *Registry) Languages() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, m := range r.byExt {
		if !seen[m.Language()] {
			seen[m.Language()] = true
			out = append(out, m.Language())
		}
	}
	sort.Strings(out)
	return out
}

// Extract returns the relative and alias-prefixed specifiers of a file, in
// match order. Duplicates are kept.
func (r *Registry) Extract(content, filePath string) []string {
	m, ok := r.MatcherFor(filePath)
	if !ok || content == "" {
		return nil
	}
	raw := m.Specifiers(content)
	out := make([]string, 0, len(raw))
	for _, spec := range raw {
		if r.isLocal(spec) {
			out = append(out, spec)
		}
	}
	return out
}

func (r *Registry) isLocal(spec string) bool {
	if strings.HasPrefix(spec, ".") {
		return true
	}
	return r.aliasPrefix != "" && strings.HasPrefix(spec, r.aliasPrefix)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

package extract

import "regexp"

var (
	// import x from "./x", import { a, b } from '../y', import type T from "@/t"
	esImportFrom = regexp.MustCompile(`import\s+(?:[\s\S]*?)\s+from\s+['"]([^'"]+)['"]`)
	// require("./x")
	commonJSRequire = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	// import "./side-effect"
	esSideEffect = regexp.MustCompile(`import\s+['"]([^'"]+)['"]`)
	// @import "./a.css"; @import url('./b.css');
	cssImport = regexp.MustCompile(`@import\s+(?:url\(\s*)?['"]([^'"]+)['"]`)
)

var webPatterns = []*regexp.Regexp{esImportFrom, commonJSRequire, esSideEffect, cssImport}

// patternMatcher runs each pattern over the whole text independently.
type patternMatcher struct {
	language   string
	extensions []string
	patterns   []*regexp.Regexp
}

func NewJavaScriptMatcher() Matcher {
	return &patternMatcher{
		language:   "javascript",
		extensions: []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"},
		patterns:   webPatterns,
	}
}

func NewCSSMatcher() Matcher {
	return &patternMatcher{
		language:   "css",
		extensions: []string{".css"},
		patterns:   webPatterns,
	}
}

func (m *patternMatcher) Language() string     { return m.language }
func (m *patternMatcher) Extensions() []string { return m.extensions }

func (m *patternMatcher) Specifiers(content string) []string {
	out := make([]string, 0)
	for _, re := range m.patterns {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			out = append(out, match[1])
		}
	}
	return out
}

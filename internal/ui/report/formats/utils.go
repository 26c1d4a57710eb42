package formats

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"repograph/internal/engine/graph"
)

func sanitizeID(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if out == "" {
		return "n"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "n_" + out
	}
	return out
}

// idSet hands out diagram identifiers, suffixing repeats with _2, _3, ...
// until the result is unused.
type idSet map[string]bool

func (s idSet) assign(base string) string {
	id := base
	for n := 2; s[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	s[id] = true
	return id
}

// makeIDs assigns every name a unique identifier safe for diagram syntax.
func makeIDs(names []string) map[string]string {
	return makeIDsIn(make(idSet, len(names)), names, "")
}

func makeIDsIn(used idSet, names []string, prefix string) map[string]string {
	ids := make(map[string]string, len(names))
	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		ids[name] = used.assign(prefix + sanitizeID(name))
	}
	return ids
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func cycleEdgeSet(cycles []graph.Cycle) map[graph.Edge]bool {
	out := make(map[graph.Edge]bool)
	for _, cycle := range cycles {
		for i := 0; i+1 < len(cycle); i++ {
			out[graph.Edge{Source: cycle[i], Target: cycle[i+1]}] = true
		}
	}
	return out
}

func cycleNodeSet(cycles []graph.Cycle) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		for _, id := range cycle {
			out[id] = true
		}
	}
	return out
}

// visibleNodes returns the nodes to draw, in graph order. Isolated files
// are dropped unless includeIsolated is set.
func visibleNodes(g *graph.Graph, includeIsolated bool) []graph.Node {
	nodes := g.Nodes()
	if includeIsolated {
		return nodes
	}
	out := make([]graph.Node, 0, len(nodes))
	for _, node := range nodes {
		if node.Connections() > 0 {
			out = append(out, node)
		}
	}
	return out
}

// groupByDirectory buckets nodes by directory; keys come back sorted.
func groupByDirectory(nodes []graph.Node) ([]string, map[string][]graph.Node) {
	groups := make(map[string][]graph.Node)
	for _, node := range nodes {
		groups[node.Directory] = append(groups[node.Directory], node)
	}
	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, groups
}

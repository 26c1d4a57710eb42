package graph

import (
	"errors"
	"fmt"
	"sort"
)

var ErrImpactTargetNotFound = errors.New("impact target not found")

type ImpactReport struct {
	TargetPath          string   `json:"target"`
	DirectImporters     []string `json:"directImporters"`
	TransitiveImporters []string `json:"transitiveImporters"`
	DirectImports       []string `json:"directImports"`
}

type ImpactTargetError struct {
	Target string
}

func (e *ImpactTargetError) Error() string {
	return fmt.Sprintf("%v: %s", ErrImpactTargetNotFound, e.Target)
}

func (e *ImpactTargetError) Unwrap() error {
	return ErrImpactTargetNotFound
}

// AnalyzeImpact lists the files that would be affected by a change to path:
// its direct importers and everything that reaches it transitively.
func (g *Graph) AnalyzeImpact(path string) (ImpactReport, error) {
	target, ok := g.nodes[path]
	if !ok {
		return ImpactReport{}, &ImpactTargetError{Target: path}
	}

	report := ImpactReport{
		TargetPath:    path,
		DirectImports: append([]string{}, target.Imports...),
	}
	sort.Strings(report.DirectImports)

	direct := append([]string{}, target.ImportedBy...)
	sort.Strings(direct)
	report.DirectImporters = direct

	directSet := make(map[string]bool, len(direct))
	for _, importer := range direct {
		directSet[importer] = true
	}

	queue := append([]string(nil), direct...)
	seen := map[string]bool{path: true}
	for _, id := range queue {
		seen[id] = true
	}

	transitive := make([]string, 0)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range g.nodes[curr].ImportedBy {
			if seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
			if !directSet[next] {
				transitive = append(transitive, next)
			}
		}
	}
	sort.Strings(transitive)
	report.TransitiveImporters = transitive

	return report, nil
}

package graph

import (
	"sort"
)

type Hotspot struct {
	Path        string  `json:"path"`
	Name        string  `json:"name"`
	Connections int     `json:"connections"`
	FanIn       int     `json:"fanIn"`
	FanOut      int     `json:"fanOut"`
	Importance  float64 `json:"importance"`
}

// TopHotspots returns up to n connected files ordered by connection count,
// ties broken by path.
func (g *Graph) TopHotspots(n int) []Hotspot {
	if n <= 0 {
		return nil
	}

	hotspots := make([]Hotspot, 0)
	for _, id := range g.order {
		node := g.nodes[id]
		connections := node.Connections()
		if connections == 0 {
			continue
		}
		hotspots = append(hotspots, Hotspot{
			Path:        node.ID,
			Name:        node.Name,
			Connections: connections,
			FanIn:       len(node.ImportedBy),
			FanOut:      len(node.Imports),
			Importance:  CalculateImportanceScore(len(node.ImportedBy), len(node.Imports), node.ID),
		})
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		if hotspots[i].Connections == hotspots[j].Connections {
			return hotspots[i].Path < hotspots[j].Path
		}
		return hotspots[i].Connections > hotspots[j].Connections
	})

	if len(hotspots) > n {
		return hotspots[:n]
	}
	return hotspots
}

// GodFiles returns the ids of nodes whose connection count exceeds threshold.
func (g *Graph) GodFiles(threshold int) []string {
	out := make([]string, 0)
	for _, id := range g.order {
		if g.nodes[id].Connections() > threshold {
			out = append(out, id)
		}
	}
	return out
}

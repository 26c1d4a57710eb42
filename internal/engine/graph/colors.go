package graph

const DefaultColor = "#6b7280"

var extensionColors = map[string]string{
	"tsx":  "#61dafb",
	"ts":   "#3178c6",
	"jsx":  "#f7df1e",
	"js":   "#f0db4f",
	"css":  "#264de4",
	"json": "#a3a3a3",
	"md":   "#ffffff",
	"html": "#e34c26",
	"py":   "#3572A5",
	"go":   "#00ADD8",
	"rs":   "#dea584",
}

// ColorFor maps a lowercase extension (no dot) to its display color.
func ColorFor(ext string) string {
	if color, ok := extensionColors[ext]; ok {
		return color
	}
	return DefaultColor
}

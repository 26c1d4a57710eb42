package graph

import "sort"

// DefaultMaxCycles bounds cycle enumeration on dense graphs.
const DefaultMaxCycles = 10

type visitState uint8

const (
	unvisited visitState = iota
	onStack
	settled
)

type dfsFrame struct {
	id   string
	next int
}

// DetectCycles enumerates import cycles with an iterative depth-first search.
// Roots are nodes with outgoing edges, in listing order. At most maxCycles
// cycles are returned; the result is a subset once the cap is hit.
func (g *Graph) DetectCycles(maxCycles int) []Cycle {
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}

	cycles := make([]Cycle, 0)
	state := make(map[string]visitState, len(g.order))

	for _, root := range g.order {
		if len(cycles) >= maxCycles {
			break
		}
		if len(g.nodes[root].Imports) == 0 || state[root] == settled {
			continue
		}

		state[root] = onStack
		path := []string{root}
		position := map[string]int{root: 0}
		stack := []dfsFrame{{id: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			imports := g.nodes[top.id].Imports

			if top.next >= len(imports) || len(cycles) >= maxCycles {
				state[top.id] = settled
				delete(position, top.id)
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}

			next := imports[top.next]
			top.next++

			switch state[next] {
			case onStack:
				start := position[next]
				cycle := make(Cycle, 0, len(path)-start+1)
				cycle = append(cycle, path[start:]...)
				cycle = append(cycle, next)
				cycles = append(cycles, cycle)
			case unvisited:
				state[next] = onStack
				position[next] = len(path)
				path = append(path, next)
				stack = append(stack, dfsFrame{id: next})
			}
		}
	}

	return cycles
}

// FindImportChain returns the shortest import chain from one file to another.
func (g *Graph) FindImportChain(from, to string) ([]string, bool) {
	if _, ok := g.nodes[from]; !ok {
		return nil, false
	}
	if _, ok := g.nodes[to]; !ok {
		return nil, false
	}
	if from == to {
		return []string{from}, true
	}

	queue := []string{from}
	visited := map[string]bool{from: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		neighbors := append([]string(nil), g.nodes[curr].Imports...)
		sort.Strings(neighbors)

		for _, next := range neighbors {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr

			if next == to {
				path := []string{to}
				for node := to; node != from; {
					p := prev[node]
					path = append(path, p)
					node = p
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path, true
			}

			queue = append(queue, next)
		}
	}

	return nil, false
}

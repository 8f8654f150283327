package graph

import (
	"errors"
	"strings"
)

var ErrCycleDetected = errors.New("cycle detected in graph")

// CycleError lists every cycle found in one pass. Each cycle is the chain of
// ids from the re-entered node to the node that closed the loop.
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	rendered := make([]string, len(e.Cycles))
	for i, cycle := range e.Cycles {
		rendered[i] = RenderCycle(cycle)
	}
	return ErrCycleDetected.Error() + ": " + strings.Join(rendered, "; ")
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// RenderCycle joins a cycle with arrows and repeats the first id at the end so
// the loop reads closed: A -> B -> A.
func RenderCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ")
}

// EnsureAcyclic walks the graph depth-first from every unvisited node and
// reports all cycles together.
func (g *Graph) EnsureAcyclic() error {
	cycles := g.FindCycles()
	if len(cycles) == 0 {
		return nil
	}
	return &CycleError{Cycles: cycles}
}

func (g *Graph) FindCycles() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]int, len(g.nodes))
	seen := make(map[string]bool)

	var path []string
	var cycles [][]string

	var visit func(node *Node)
	visit = func(node *Node) {
		visited[node.ID] = true
		onStack[node.ID] = len(path)
		path = append(path, node.ID)

		for _, dep := range node.Dependencies {
			if idx, ok := onStack[dep.ID]; ok {
				cycle := make([]string, len(path)-idx)
				copy(cycle, path[idx:])

				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !visited[dep.ID] {
				visit(dep)
			}
		}

		path = path[:len(path)-1]
		delete(onStack, node.ID)
	}

	for _, node := range g.order {
		if !visited[node.ID] {
			visit(node)
		}
	}

	return cycles
}

package graph

type Direction int

const (
	// Topological visits dependencies before their dependents.
	Topological Direction = iota
	// ReverseTopological visits dependents before their dependencies.
	ReverseTopological
)

func (d Direction) String() string {
	switch d {
	case Topological:
		return "topological"
	case ReverseTopological:
		return "reverse-topological"
	default:
		return "unknown"
	}
}

type traverseConfig struct {
	direction Direction
	filter    func(*Node) bool
}

type TraverseOption func(*traverseConfig)

func WithDirection(d Direction) TraverseOption {
	return func(cfg *traverseConfig) {
		cfg.direction = d
	}
}

// WithFilter restricts the traversal to nodes for which keep returns true.
// Edges to excluded nodes are ignored.
func WithFilter(keep func(*Node) bool) TraverseOption {
	return func(cfg *traverseConfig) {
		cfg.filter = keep
	}
}

// Traverse visits every node passing the filter exactly once using Kahn's
// algorithm. Nodes that become ready at the same time are visited in
// insertion order. An error from fn stops the traversal and is returned as is.
func (g *Graph) Traverse(fn func(*Node) error, opts ...TraverseOption) error {
	cfg := &traverseConfig{direction: Topological}
	for _, opt := range opts {
		opt(cfg)
	}

	included := make(map[string]bool, len(g.order))
	nodes := make([]*Node, 0, len(g.order))
	for _, node := range g.order {
		if cfg.filter == nil || cfg.filter(node) {
			included[node.ID] = true
			nodes = append(nodes, node)
		}
	}

	// degree counts unvisited predecessors in the chosen direction; next maps
	// a node to the nodes it unblocks.
	degree := make(map[string]int, len(nodes))
	next := make(map[string][]*Node, len(nodes))

	for _, node := range nodes {
		for _, dep := range node.Dependencies {
			if !included[dep.ID] {
				continue
			}
			if cfg.direction == ReverseTopological {
				degree[dep.ID]++
				next[node.ID] = append(next[node.ID], dep)
			} else {
				degree[node.ID]++
				next[dep.ID] = append(next[dep.ID], node)
			}
		}
	}

	queue := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		if degree[node.ID] == 0 {
			queue = append(queue, node)
		}
	}

	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if err := fn(node); err != nil {
			return err
		}
		visited++

		for _, n := range next[node.ID] {
			degree[n.ID]--
			if degree[n.ID] == 0 {
				queue = append(queue, n)
			}
		}
	}

	if visited != len(nodes) {
		return ErrCycleDetected
	}
	return nil
}

// Order returns the ids in traversal order.
func (g *Graph) Order(opts ...TraverseOption) ([]string, error) {
	ids := make([]string, 0, len(g.order))
	err := g.Traverse(
		func(n *Node) error {
			ids = append(ids, n.ID)
			return nil
		}, opts...,
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

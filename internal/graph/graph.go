package graph

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDuplicateNode = errors.New("node already exists")
	ErrNodeNotFound  = errors.New("node not found")
)

// Hook is a lifecycle callback bound to a node's instance.
type Hook func(ctx context.Context) error

type Hooks struct {
	Init    []Hook
	Destroy []Hook
}

type Metadata struct {
	Module   string
	Exported bool
}

// Node is a single instantiated provider. Dependencies point at nodes owned
// by the same graph.
type Node struct {
	ID           string
	Dependencies []*Node
	Instance     any
	Metadata     Metadata
	Hooks        Hooks
}

// DependencyIDs returns the ids of the node's dependencies in declaration
// order.
func (n *Node) DependencyIDs() []string {
	ids := make([]string, len(n.Dependencies))
	for i, dep := range n.Dependencies {
		ids[i] = dep.ID
	}
	return ids
}

// Graph owns a set of nodes. It is not safe for concurrent mutation; once
// assembled it is only read.
type Graph struct {
	nodes map[string]*Node
	order []*Node
}

func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

func (g *Graph) AddNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("graph: nil node")
	}
	if _, exists := g.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}

	g.nodes[node.ID] = node
	g.order = append(g.order, node)
	return nil
}

func (g *Graph) HasNode(id string) bool {
	_, exists := g.nodes[id]
	return exists
}

func (g *Graph) GetNode(id string) (*Node, error) {
	node, exists := g.nodes[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return node, nil
}

// Dependents returns the nodes that list id among their dependencies, in
// insertion order.
func (g *Graph) Dependents(id string) []*Node {
	var dependents []*Node
	for _, node := range g.order {
		for _, dep := range node.Dependencies {
			if dep.ID == id {
				dependents = append(dependents, node)
				break
			}
		}
	}
	return dependents
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	copy(nodes, g.order)
	return nodes
}

func (g *Graph) IDs() []string {
	ids := make([]string, len(g.order))
	for i, node := range g.order {
		ids[i] = node.ID
	}
	return ids
}

func (g *Graph) Size() int {
	return len(g.order)
}

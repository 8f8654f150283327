package graph

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraph creates one node per row ({id, deps...}) in order, then
// links dependencies by id. Links may form cycles.
func buildGraph(tb testing.TB, specs ...[]string) *Graph {
	tb.Helper()

	nodes := make(map[string]*Node, len(specs))
	for _, row := range specs {
		nodes[row[0]] = &Node{ID: row[0]}
	}

	g := New()
	for _, row := range specs {
		node := nodes[row[0]]
		for _, dep := range row[1:] {
			target, ok := nodes[dep]
			require.True(tb, ok, "unknown dependency %s", dep)
			node.Dependencies = append(node.Dependencies, target)
		}
		require.NoError(tb, g.AddNode(node))
	}
	return g
}

func indexOf(s []string, v string) int {
	return slices.Index(s, v)
}

func TestGraph_AddNode(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"B"}, []string{"C"}, []string{"A", "B", "C"})

	assert.True(t, g.HasNode("A"))
	assert.Equal(t, 3, g.Size())

	node, err := g.GetNode("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, node.DependencyIDs())
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddNode(&Node{ID: "A"}))

	err := g.AddNode(&Node{ID: "A"})
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Equal(t, 1, g.Size())

	assert.Error(t, g.AddNode(nil))
}

func TestGraph_GetNode_NotFound(t *testing.T) {
	t.Parallel()

	_, err := New().GetNode("missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestGraph_Dependents(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"C"}, []string{"A", "C"}, []string{"B", "C"})

	var ids []string
	for _, n := range g.Dependents("C") {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"A", "B"}, ids)
	assert.Empty(t, g.Dependents("A"))
}

func TestGraph_NodesInsertionOrder(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"Z"}, []string{"A"}, []string{"M"})
	assert.Equal(t, []string{"Z", "A", "M"}, g.IDs())
}

func TestGraph_EnsureAcyclic_NoCycle(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"C"}, []string{"B", "C"}, []string{"A", "B"})
	assert.NoError(t, g.EnsureAcyclic())
	assert.Empty(t, g.FindCycles())
}

func TestGraph_EnsureAcyclic_SimpleCycle(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"A", "B"}, []string{"B", "A"})

	err := g.EnsureAcyclic()
	require.ErrorIs(t, err, ErrCycleDetected)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, [][]string{{"A", "B"}}, cycleErr.Cycles)
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestGraph_EnsureAcyclic_SelfCycle(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"A", "A"})

	var cycleErr *CycleError
	require.ErrorAs(t, g.EnsureAcyclic(), &cycleErr)
	assert.Equal(t, [][]string{{"A"}}, cycleErr.Cycles)
	assert.Contains(t, cycleErr.Error(), "A -> A")
}

func TestGraph_EnsureAcyclic_ReportsEveryCycle(t *testing.T) {
	t.Parallel()

	g := buildGraph(
		t,
		[]string{"A", "B"},
		[]string{"B", "C"},
		[]string{"C", "D"},
		[]string{"D", "B"},
		[]string{"X", "Y"},
		[]string{"Y", "X"},
		[]string{"S", "S"},
		[]string{"Free"},
	)

	var cycleErr *CycleError
	require.ErrorAs(t, g.EnsureAcyclic(), &cycleErr)
	assert.Equal(
		t, [][]string{
			{"B", "C", "D"},
			{"X", "Y"},
			{"S"},
		}, cycleErr.Cycles,
	)

	msg := cycleErr.Error()
	assert.Contains(t, msg, "B -> C -> D -> B")
	assert.Contains(t, msg, "X -> Y -> X")
	assert.Contains(t, msg, "S -> S")
	assert.NotContains(t, msg, "Free")
}

func TestRenderCycle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", RenderCycle(nil))
	assert.Equal(t, "A -> A", RenderCycle([]string{"A"}))
	assert.Equal(t, "A -> B -> C -> A", RenderCycle([]string{"A", "B", "C"}))
}

func TestGraph_Traverse_Topological(t *testing.T) {
	t.Parallel()

	g := buildGraph(
		t,
		[]string{"A", "B", "C"},
		[]string{"B", "D"},
		[]string{"C", "D"},
		[]string{"D"},
	)

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, 4)

	assert.Less(t, indexOf(order, "D"), indexOf(order, "B"))
	assert.Less(t, indexOf(order, "D"), indexOf(order, "C"))
	assert.Less(t, indexOf(order, "B"), indexOf(order, "A"))
	assert.Less(t, indexOf(order, "C"), indexOf(order, "A"))
}

func TestGraph_Traverse_LayerTieBreakFollowsInsertion(t *testing.T) {
	t.Parallel()

	g := buildGraph(
		t,
		[]string{"A"},
		[]string{"B", "A"},
		[]string{"C", "A", "B"},
	)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestGraph_Traverse_Reverse(t *testing.T) {
	t.Parallel()

	g := buildGraph(
		t,
		[]string{"Database"},
		[]string{"Server", "Database"},
		[]string{"App", "Server"},
	)

	order, err := g.Order(WithDirection(ReverseTopological))
	require.NoError(t, err)
	assert.Equal(t, []string{"App", "Server", "Database"}, order)
}

func TestGraph_Traverse_EveryEdgeRespected(t *testing.T) {
	t.Parallel()

	g := buildGraph(
		t,
		[]string{"Config"},
		[]string{"Cache", "Config"},
		[]string{"Database", "Config"},
		[]string{"Worker", "Database"},
		[]string{"Server", "Database", "Cache"},
		[]string{"App", "Server", "Worker"},
	)

	forward, err := g.Order()
	require.NoError(t, err)
	reverse, err := g.Order(WithDirection(ReverseTopological))
	require.NoError(t, err)

	for _, node := range g.Nodes() {
		for _, dep := range node.Dependencies {
			assert.Less(t, indexOf(forward, dep.ID), indexOf(forward, node.ID), "%s before %s", dep.ID, node.ID)
			assert.Less(t, indexOf(reverse, node.ID), indexOf(reverse, dep.ID), "%s before %s", node.ID, dep.ID)
		}
	}
}

func TestGraph_Traverse_Filter(t *testing.T) {
	t.Parallel()

	g := buildGraph(
		t,
		[]string{"A"},
		[]string{"B", "A"},
		[]string{"C", "B"},
	)

	order, err := g.Order(
		WithFilter(
			func(n *Node) bool {
				return n.ID != "B"
			},
		),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, order)
}

func TestGraph_Traverse_CallbackErrorAborts(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"A"}, []string{"B", "A"}, []string{"C", "B"})
	boom := errors.New("boom")

	var visited []string
	err := g.Traverse(
		func(n *Node) error {
			visited = append(visited, n.ID)
			if n.ID == "B" {
				return boom
			}
			return nil
		},
	)

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"A", "B"}, visited)
}

func TestGraph_Traverse_WithCycle(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, []string{"A", "B"}, []string{"B", "A"}, []string{"C"})

	var visited []string
	err := g.Traverse(
		func(n *Node) error {
			visited = append(visited, n.ID)
			return nil
		},
	)
	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.Equal(t, []string{"C"}, visited)
}

func TestDirection_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "topological", Topological.String())
	assert.Equal(t, "reverse-topological", ReverseTopological.String())
	assert.Equal(t, "unknown", Direction(9).String())
}

func chainGraph(n int) *Graph {
	g := New()
	var prev *Node
	for i := 0; i < n; i++ {
		node := &Node{ID: fmt.Sprintf("node_%d", i)}
		if prev != nil {
			node.Dependencies = []*Node{prev}
		}
		_ = g.AddNode(node)
		prev = node
	}
	return g
}

func BenchmarkGraph_EnsureAcyclic(b *testing.B) {
	g := chainGraph(100)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = g.EnsureAcyclic()
	}
}

func BenchmarkGraph_Traverse(b *testing.B) {
	g := chainGraph(100)
	noop := func(*Node) error { return nil }

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = g.Traverse(noop)
	}
}

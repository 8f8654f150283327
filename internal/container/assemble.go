package container

import (
	"fmt"

	"github.com/danpasecinic/kiln/internal/graph"
)

// assemble turns the instance map into a graph. It runs its own cycle guard
// and finishes with a full acyclicity check.
func (b *Builder) assemble(instances map[string]any) (*graph.Graph, error) {
	g := graph.New()
	nodes := make(map[string]*graph.Node, len(instances))
	active := make(map[string]int)
	var stack []string

	var visit func(key, requiredBy string) (*graph.Node, error)
	visit = func(key, requiredBy string) (*graph.Node, error) {
		if node, ok := nodes[key]; ok {
			return node, nil
		}

		if idx, ok := active[key]; ok {
			chain := append(append([]string{}, stack[idx:]...), key)
			return nil, &CycleError{Token: key, Chain: chain}
		}

		entry, ok := b.registry.Get(key)
		if !ok {
			return nil, &MissingError{Token: key, RequiredBy: requiredBy}
		}
		instance, ok := instances[key]
		if !ok {
			return nil, &TokenError{Token: key, Err: ErrInstanceNotFound}
		}

		active[key] = len(stack)
		stack = append(stack, key)
		defer func() {
			stack = stack[:len(stack)-1]
			delete(active, key)
		}()

		deps := make([]*graph.Node, len(entry.Dependencies))
		for i, dep := range entry.Dependencies {
			node, err := visit(dep, key)
			if err != nil {
				return nil, err
			}
			deps[i] = node
		}

		hooks, err := bindHooks(entry, instance)
		if err != nil {
			return nil, err
		}

		node := &graph.Node{
			ID:           key,
			Dependencies: deps,
			Instance:     instance,
			Metadata: graph.Metadata{
				Module:   b.registry.Owner(key),
				Exported: b.registry.IsExported(key),
			},
			Hooks: hooks,
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
		nodes[key] = node
		return node, nil
	}

	for _, key := range b.registry.Keys() {
		if _, err := visit(key, ""); err != nil {
			return nil, err
		}
	}

	if err := g.EnsureAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

func bindHooks(entry *Entry, instance any) (graph.Hooks, error) {
	var hooks graph.Hooks

	for _, bind := range entry.OnInit {
		hook, err := bind(instance)
		if err != nil {
			return hooks, &TokenError{Token: entry.Key, Err: fmt.Errorf("%w: %w", ErrInvalidHook, err)}
		}
		hooks.Init = append(hooks.Init, hook)
	}
	for _, bind := range entry.OnDestroy {
		hook, err := bind(instance)
		if err != nil {
			return hooks, &TokenError{Token: entry.Key, Err: fmt.Errorf("%w: %w", ErrInvalidHook, err)}
		}
		hooks.Destroy = append(hooks.Destroy, hook)
	}
	return hooks, nil
}

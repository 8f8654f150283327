package container

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danpasecinic/kiln/internal/graph"
)

type Status int

const (
	StatusReady Status = iota
	StatusInitialized
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusInitialized:
		return "initialized"
	case StatusDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Container is the result of a successful build. Its graph never changes;
// only the lifecycle status moves forward.
type Container struct {
	mu     sync.Mutex
	graph  *graph.Graph
	logger *slog.Logger
	status Status

	onInit    []ObserveFunc
	onDestroy []ObserveFunc
}

func newContainer(g *graph.Graph, logger *slog.Logger, onInit, onDestroy []ObserveFunc) *Container {
	return &Container{
		graph:     g,
		logger:    logger,
		onInit:    onInit,
		onDestroy: onDestroy,
	}
}

func (c *Container) Get(key string) (any, error) {
	node, err := c.graph.GetNode(key)
	if err != nil {
		return nil, &TokenError{Token: key, Err: ErrInstanceNotFound}
	}
	return node.Instance, nil
}

func (c *Container) Has(key string) bool {
	return c.graph.HasNode(key)
}

func (c *Container) Keys() []string {
	return c.graph.IDs()
}

func (c *Container) Size() int {
	return c.graph.Size()
}

// Graph exposes the assembled graph for read-only inspection.
func (c *Container) Graph() *graph.Graph {
	return c.graph
}

func (c *Container) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Container) Traverse(fn func(*graph.Node) error, opts ...graph.TraverseOption) error {
	return c.graph.Traverse(fn, opts...)
}

// Init runs init hooks in topological order. A hook error stops the pass and
// is returned unchanged. Once Init has succeeded, later calls do nothing.
func (c *Container) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case StatusInitialized:
		return nil
	case StatusDestroyed:
		return ErrDestroyed
	}

	err := c.graph.Traverse(
		func(node *graph.Node) error {
			return c.runHooks(ctx, node, "init", node.Hooks.Init, c.onInit)
		}, graph.WithDirection(graph.Topological),
	)
	if err != nil {
		return err
	}

	c.status = StatusInitialized
	return nil
}

// Destroy runs destroy hooks in reverse topological order with the same
// abort rule as Init. Once Destroy has succeeded, later calls do nothing.
func (c *Container) Destroy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusDestroyed {
		return nil
	}

	err := c.graph.Traverse(
		func(node *graph.Node) error {
			return c.runHooks(ctx, node, "destroy", node.Hooks.Destroy, c.onDestroy)
		}, graph.WithDirection(graph.ReverseTopological),
	)
	if err != nil {
		return err
	}

	c.status = StatusDestroyed
	return nil
}

func (c *Container) runHooks(
	ctx context.Context,
	node *graph.Node,
	phase string,
	hooks []graph.Hook,
	observers []ObserveFunc,
) error {
	if len(hooks) == 0 {
		return nil
	}

	start := time.Now()
	var hookErr error
	for i, hook := range hooks {
		c.logger.Debug("running "+phase+" hook", "service", node.ID, "index", i)
		if err := hook(ctx); err != nil {
			c.logger.Error(phase+" hook failed", "service", node.ID, "index", i, "error", err)
			hookErr = err
			break
		}
	}

	duration := time.Since(start)
	for _, fn := range observers {
		fn(node.ID, duration, hookErr)
	}
	return hookErr
}

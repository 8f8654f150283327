package kiln

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danpasecinic/kiln/internal/container"
	"github.com/danpasecinic/kiln/internal/graph"
	kreflect "github.com/danpasecinic/kiln/internal/reflect"
)

type (
	Node           = graph.Node
	Metadata       = graph.Metadata
	Direction      = graph.Direction
	TraverseOption = graph.TraverseOption
	Status         = container.Status
)

const (
	Topological        = graph.Topological
	ReverseTopological = graph.ReverseTopological
)

const (
	StatusReady       = container.StatusReady
	StatusInitialized = container.StatusInitialized
	StatusDestroyed   = container.StatusDestroyed
)

func WithDirection(d Direction) TraverseOption {
	return graph.WithDirection(d)
}

func WithFilter(keep func(*Node) bool) TraverseOption {
	return graph.WithFilter(keep)
}

// Container holds the instances produced by a Builder. The set of instances
// never changes after Build.
type Container struct {
	internal *container.Container
	logger   *slog.Logger
}

func (c *Container) Get(token Token) (any, error) {
	instance, err := c.internal.Get(Normalize(token))
	if err != nil {
		return nil, translate(err)
	}
	return instance, nil
}

func (c *Container) Has(token Token) bool {
	return c.internal.Has(Normalize(token))
}

// Keys returns instance keys in graph order.
func (c *Container) Keys() []string {
	return c.internal.Keys()
}

func (c *Container) Size() int {
	return c.internal.Size()
}

func (c *Container) Status() Status {
	return c.internal.Status()
}

// Init runs init hooks with dependencies before their dependents. A hook
// error stops the pass and is returned as is.
func (c *Container) Init(ctx context.Context) error {
	err := c.internal.Init(ctx)
	if errors.Is(err, container.ErrDestroyed) {
		return errContainerDestroyed()
	}
	return err
}

// Destroy runs destroy hooks with dependents before their dependencies.
func (c *Container) Destroy(ctx context.Context) error {
	return c.internal.Destroy(ctx)
}

// Run calls Init, waits for ctx to be done or for SIGINT or SIGTERM, then
// calls Destroy.
func (c *Container) Run(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case sig := <-quit:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	}

	signal.Stop(quit)
	close(quit)

	return c.Destroy(context.WithoutCancel(ctx))
}

// Traverse visits nodes in dependency order. Errors returned by fn stop the
// traversal and are returned as is.
func (c *Container) Traverse(fn func(*Node) error, opts ...TraverseOption) error {
	return c.internal.Traverse(fn, opts...)
}

// Nodes returns the graph nodes in insertion order.
func (c *Container) Nodes() []*Node {
	return c.internal.Graph().Nodes()
}

func (c *Container) Node(token Token) (*Node, bool) {
	node, err := c.internal.Graph().GetNode(Normalize(token))
	if err != nil {
		return nil, false
	}
	return node, true
}

// Dependents returns the nodes that depend directly on token.
func (c *Container) Dependents(token Token) []*Node {
	return c.internal.Graph().Dependents(Normalize(token))
}

// Get returns the instance for token as a T.
func Get[T any](c *Container, token TokenOf[T]) (T, error) {
	var zero T

	key := Normalize(token)
	instance, err := c.Get(token)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}

	v, ok := instance.(T)
	if !ok {
		return zero, errResolutionFailed(
			key,
			fmt.Errorf("instance is %T, not %s", instance, kreflect.TypeName[T]()),
		)
	}
	return v, nil
}

func MustGet[T any](c *Container, token TokenOf[T]) T {
	v, err := Get[T](c, token)
	if err != nil {
		panic(err)
	}
	return v
}

// Invoke returns the instance registered under TypeOf[T].
func Invoke[T any](c *Container) (T, error) {
	return Get[T](c, TypeOf[T]())
}

func MustInvoke[T any](c *Container) T {
	v, err := Invoke[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

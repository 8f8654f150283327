// Package kilntest provides helpers for building kiln containers in tests.
package kilntest

import (
	"context"
	"slices"
	"sync"

	"github.com/danpasecinic/kiln"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestBuilder struct {
	*kiln.Builder
	tb TB
}

func New(tb TB, opts ...kiln.Option) *TestBuilder {
	tb.Helper()

	return &TestBuilder{
		Builder: kiln.New(opts...),
		tb:      tb,
	}
}

func (b *TestBuilder) RequireRegister(items ...any) {
	b.tb.Helper()

	if err := b.Register(items...); err != nil {
		b.tb.Fatalf("failed to register: %v", err)
	}
}

// RequireBuild builds the container and destroys it when the test ends.
func (b *TestBuilder) RequireBuild(ctx context.Context) *TestContainer {
	b.tb.Helper()

	c, err := b.Build(ctx)
	if err != nil {
		b.tb.Fatalf("failed to build container: %v", err)
		return nil
	}

	b.tb.Cleanup(func() {
		if err := c.Destroy(context.Background()); err != nil {
			b.tb.Fatalf("failed to destroy container: %v", err)
		}
	})

	return &TestContainer{Container: c, tb: b.tb}
}

// RequireBuildError builds the container and fails the test if the build
// succeeds.
func (b *TestBuilder) RequireBuildError(ctx context.Context) error {
	b.tb.Helper()

	c, err := b.Build(ctx)
	if err == nil {
		_ = c.Destroy(context.Background())
		b.tb.Fatal("expected build to fail")
	}
	return err
}

type TestContainer struct {
	*kiln.Container
	tb TB
}

func (tc *TestContainer) RequireInit(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.Init(ctx); err != nil {
		tc.tb.Fatalf("failed to init container: %v", err)
	}
}

func (tc *TestContainer) RequireDestroy(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.Destroy(ctx); err != nil {
		tc.tb.Fatalf("failed to destroy container: %v", err)
	}
}

func AssertHas(tc *TestContainer, token kiln.Token) {
	tc.tb.Helper()

	if !tc.Has(token) {
		tc.tb.Fatalf("expected container to have %s", kiln.Normalize(token))
	}
}

func AssertNotHas(tc *TestContainer, token kiln.Token) {
	tc.tb.Helper()

	if tc.Has(token) {
		tc.tb.Fatalf("expected container to not have %s", kiln.Normalize(token))
	}
}

func MustGet[T any](tc *TestContainer, token kiln.TokenOf[T]) T {
	tc.tb.Helper()

	v, err := kiln.Get[T](tc.Container, token)
	if err != nil {
		tc.tb.Fatalf("failed to get %s: %v", kiln.Normalize(token), err)
	}
	return v
}

func MustInvoke[T any](tc *TestContainer) T {
	tc.tb.Helper()

	return MustGet[T](tc, kiln.TypeOf[T]())
}

// HookRecorder collects lifecycle events in the order they happen.
type HookRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *HookRecorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *HookRecorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *HookRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Hook returns a hook that records event when it runs.
func (r *HookRecorder) Hook(event string) kiln.Hook {
	return func(context.Context) error {
		r.Record(event)
		return nil
	}
}

// Record returns a class hook that records event when it runs. Use it with
// ClassDef.OnInit and ClassDef.OnDestroy.
func Record[T any](r *HookRecorder, event string) func(T, context.Context) error {
	return func(T, context.Context) error {
		r.Record(event)
		return nil
	}
}

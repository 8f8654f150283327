package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type State int

const (
	StateOpen State = iota
	StateBuilding
	StateBuilt
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateBuilding:
		return "building"
	case StateBuilt:
		return "built"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ObserveFunc receives timing for a single provider or hook run.
type ObserveFunc func(key string, duration time.Duration, err error)

type Config struct {
	Logger     *slog.Logger
	OnRegister []func(key string)
	OnProvide  []ObserveFunc
	OnInit     []ObserveFunc
	OnDestroy  []ObserveFunc
}

// Builder accepts registrations while open and produces a Container once.
// It is meant to be driven by a single goroutine.
type Builder struct {
	registry *Registry
	logger   *slog.Logger
	state    State

	onRegister []func(key string)
	onProvide  []ObserveFunc
	onInit     []ObserveFunc
	onDestroy  []ObserveFunc
}

func New(cfg *Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		registry:   NewRegistry(),
		logger:     logger,
		onRegister: cfg.OnRegister,
		onProvide:  cfg.OnProvide,
		onInit:     cfg.OnInit,
		onDestroy:  cfg.OnDestroy,
	}
}

func (b *Builder) State() State {
	return b.state
}

func (b *Builder) Registry() *Registry {
	return b.registry
}

func (b *Builder) checkOpen() error {
	if b.state != StateOpen {
		return ErrAlreadyBuilt
	}
	return nil
}

func (b *Builder) Register(entry *Entry, module string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.register(entry, module)
}

func (b *Builder) register(entry *Entry, module string) error {
	if err := b.registry.Register(entry, module); err != nil {
		return err
	}

	b.logger.Debug(
		"registered provider",
		"service", entry.Key,
		"kind", entry.Kind.String(),
		"module", module,
		"dependencies", entry.Dependencies,
	)
	for _, fn := range b.onRegister {
		fn(entry.Key)
	}
	return nil
}

// BeginModule marks a module as loaded. It reports false when the module was
// already loaded and should be skipped.
func (b *Builder) BeginModule(name string) (bool, error) {
	if err := b.checkOpen(); err != nil {
		return false, err
	}
	if !b.registry.MarkModule(name) {
		b.logger.Debug("module already loaded", "module", name)
		return false, nil
	}
	b.logger.Debug("loading module", "module", name)
	return true, nil
}

func (b *Builder) Export(module string, keys []string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.registry.AddExports(module, keys)
	return nil
}

// Defer schedules a module's provider loader to run at the start of Build.
func (b *Builder) Defer(module string, load DeferredFunc) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.registry.AddDeferred(module, load)
	return nil
}

func (b *Builder) Has(key string) bool {
	return b.registry.Has(key)
}

func (b *Builder) Keys() []string {
	return b.registry.Keys()
}

func (b *Builder) Size() int {
	return b.registry.Size()
}

// Build runs deferred module loaders, instantiates every provider in
// dependency order and assembles the graph. Any failure leaves the builder in
// StateFailed and no container is returned.
func (b *Builder) Build(ctx context.Context) (*Container, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	b.state = StateBuilding

	start := time.Now()
	c, err := b.build(ctx)
	if err != nil {
		b.state = StateFailed
		b.logger.Error("container build failed", "error", err)
		return nil, err
	}

	b.state = StateBuilt
	b.logger.Debug("container built", "services", c.Size(), "duration", time.Since(start))
	return c, nil
}

func (b *Builder) build(ctx context.Context) (*Container, error) {
	if err := b.loadDeferred(ctx); err != nil {
		return nil, err
	}

	instances, err := b.instantiateAll(ctx)
	if err != nil {
		return nil, err
	}

	g, err := b.assemble(instances)
	if err != nil {
		return nil, err
	}

	return newContainer(g, b.logger, b.onInit, b.onDestroy), nil
}

func (b *Builder) loadDeferred(ctx context.Context) error {
	for _, loader := range b.registry.deferred {
		b.logger.Debug("loading deferred providers", "module", loader.module)

		entries, err := loader.load(ctx)
		if err != nil {
			return &ModuleError{
				Module: loader.module,
				Err:    fmt.Errorf("provider factory failed: %w", err),
			}
		}

		for _, entry := range entries {
			if err := b.register(entry, loader.module); err != nil {
				return &ModuleError{Module: loader.module, Err: err}
			}
		}
	}
	b.registry.deferred = nil
	return nil
}

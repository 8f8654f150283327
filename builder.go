package kiln

import (
	"context"
	"log/slog"

	"github.com/danpasecinic/kiln/internal/container"
)

// Builder collects providers and modules and builds a Container from them.
// A Builder builds at most once and is not safe for concurrent use.
type Builder struct {
	internal *container.Builder
	config   *builderConfig
}

func New(opts ...Option) *Builder {
	cfg := &builderConfig{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	internalCfg := &container.Config{
		Logger: cfg.logger,
	}
	for _, fn := range cfg.onRegister {
		internalCfg.OnRegister = append(internalCfg.OnRegister, fn)
	}
	for _, fn := range cfg.onProvide {
		internalCfg.OnProvide = append(internalCfg.OnProvide, container.ObserveFunc(fn))
	}
	for _, fn := range cfg.onInit {
		internalCfg.OnInit = append(internalCfg.OnInit, container.ObserveFunc(fn))
	}
	for _, fn := range cfg.onDestroy {
		internalCfg.OnDestroy = append(internalCfg.OnDestroy, container.ObserveFunc(fn))
	}

	return &Builder{
		internal: container.New(internalCfg),
		config:   cfg,
	}
}

// Register adds modules, providers and declarations. Items are processed in
// order and the first error stops the call.
func (b *Builder) Register(items ...any) error {
	if b.internal.State() != container.StateOpen {
		return errAlreadyBuilt()
	}

	for _, item := range items {
		if err := b.register(item); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (b *Builder) register(item any) error {
	if m, ok := item.(*Module); ok {
		if m == nil {
			return errInvalidDeclaration("nil module", nil)
		}
		return m.apply(b.internal)
	}

	entry, err := lower(item)
	if err != nil {
		return err
	}
	return b.internal.Register(entry, "")
}

// Build instantiates every provider and returns the container. On failure no
// container is returned and the builder cannot be used again.
func (b *Builder) Build(ctx context.Context) (*Container, error) {
	c, err := b.internal.Build(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &Container{internal: c, logger: b.config.logger}, nil
}

func (b *Builder) Has(token Token) bool {
	return b.internal.Has(Normalize(token))
}

// Keys returns registered keys in registration order.
func (b *Builder) Keys() []string {
	return b.internal.Keys()
}

func (b *Builder) Size() int {
	return b.internal.Size()
}

func (b *Builder) Built() bool {
	return b.internal.State() == container.StateBuilt
}

package container

import (
	"context"
	"time"
)

// instantiation is the state of one depth-first instantiation pass.
type instantiation struct {
	builder   *Builder
	ctx       context.Context
	instances map[string]any
	active    map[string]int
	stack     []string
}

func (b *Builder) instantiateAll(ctx context.Context) (map[string]any, error) {
	s := &instantiation{
		builder:   b,
		ctx:       ctx,
		instances: make(map[string]any, b.registry.Size()),
		active:    make(map[string]int),
	}

	for _, key := range b.registry.Keys() {
		if _, err := s.instantiate(key, ""); err != nil {
			return nil, err
		}
	}
	return s.instances, nil
}

func (s *instantiation) instantiate(key, requiredBy string) (any, error) {
	if instance, ok := s.instances[key]; ok {
		return instance, nil
	}

	if idx, ok := s.active[key]; ok {
		chain := make([]string, 0, len(s.stack)-idx+1)
		chain = append(chain, s.stack[idx:]...)
		chain = append(chain, key)
		return nil, &CycleError{Token: key, Chain: chain}
	}

	entry, ok := s.builder.registry.Get(key)
	if !ok {
		return nil, &MissingError{Token: key, RequiredBy: requiredBy}
	}

	s.active[key] = len(s.stack)
	s.stack = append(s.stack, key)
	defer func() {
		s.stack = s.stack[:len(s.stack)-1]
		delete(s.active, key)
	}()

	args := make([]any, len(entry.Dependencies))
	for i, dep := range entry.Dependencies {
		instance, err := s.instantiate(dep, key)
		if err != nil {
			return nil, err
		}
		args[i] = instance
	}

	start := time.Now()
	instance, err := entry.Construct(s.ctx, args)
	duration := time.Since(start)
	for _, fn := range s.builder.onProvide {
		fn(key, duration, err)
	}
	if err != nil {
		return nil, &ProviderError{Token: key, Err: err}
	}

	s.builder.logger.Debug("instantiated provider", "service", key, "kind", entry.Kind.String(), "duration", duration)
	s.instances[key] = instance
	return instance, nil
}

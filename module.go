package kiln

import (
	"context"
	"fmt"

	"github.com/danpasecinic/kiln/internal/container"
)

// ProviderFunc produces a module's providers at build time.
type ProviderFunc func(ctx context.Context) ([]any, error)

// Module groups providers under a name. A builder loads each module name at
// most once.
type Module struct {
	name     string
	items    []any
	deferred []ProviderFunc
	imports  []*Module
	exports  []Token
}

func NewModule(name string) *Module {
	return &Module{
		name: name,
	}
}

func (m *Module) Name() string {
	return m.name
}

func (m *Module) Provide(items ...any) *Module {
	m.items = append(m.items, items...)
	return m
}

// ProvideFunc adds providers that are computed once during Build, before any
// provider is instantiated.
func (m *Module) ProvideFunc(fn ProviderFunc) *Module {
	m.deferred = append(m.deferred, fn)
	return m
}

// Import loads modules before this one's own providers.
func (m *Module) Import(modules ...*Module) *Module {
	m.imports = append(m.imports, modules...)
	return m
}

// Export marks tokens as part of the module's public surface. Exports are
// recorded in the graph metadata and do not restrict resolution.
func (m *Module) Export(tokens ...Token) *Module {
	m.exports = append(m.exports, tokens...)
	return m
}

func (m *Module) apply(b *container.Builder) error {
	if m.name == "" {
		return errInvalidDeclaration("module has no name", nil)
	}

	fresh, err := b.BeginModule(m.name)
	if err != nil || !fresh {
		return err
	}

	for _, imported := range m.imports {
		if imported == nil {
			return errInvalidDeclaration(fmt.Sprintf("module %s imports a nil module", m.name), nil)
		}
		if err := imported.apply(b); err != nil {
			return err
		}
	}

	for _, item := range m.items {
		entry, err := lower(item)
		if err != nil {
			return err
		}
		if err := b.Register(entry, m.name); err != nil {
			return err
		}
	}

	for _, fn := range m.deferred {
		if fn == nil {
			return errInvalidDeclaration(fmt.Sprintf("module %s has a nil provider func", m.name), nil)
		}
		if err := b.Defer(m.name, deferredEntries(fn)); err != nil {
			return err
		}
	}

	return b.Export(m.name, normalizeAll(m.exports))
}

func deferredEntries(fn ProviderFunc) container.DeferredFunc {
	return func(ctx context.Context) ([]*container.Entry, error) {
		items, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		entries := make([]*container.Entry, 0, len(items))
		for _, item := range items {
			entry, err := lower(item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return entries, nil
	}
}

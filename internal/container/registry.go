package container

import (
	"context"

	"github.com/danpasecinic/kiln/internal/graph"
)

type Kind int

const (
	KindClass Kind = iota
	KindValue
	KindFactory
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindValue:
		return "value"
	case KindFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// ConstructFunc produces an instance from its resolved dependencies, passed
// positionally in declaration order.
type ConstructFunc func(ctx context.Context, args []any) (any, error)

// HookBinder binds a declared lifecycle hook to a concrete instance.
type HookBinder func(instance any) (graph.Hook, error)

// DeferredFunc loads a module's providers at build time.
type DeferredFunc func(ctx context.Context) ([]*Entry, error)

type Entry struct {
	Key          string
	Kind         Kind
	Dependencies []string
	Construct    ConstructFunc
	OnInit       []HookBinder
	OnDestroy    []HookBinder
}

type deferredLoader struct {
	module string
	load   DeferredFunc
}

// Registry holds provider entries in registration order together with module
// bookkeeping. It is owned by a single Builder.
type Registry struct {
	entries  map[string]*Entry
	order    []string
	owners   map[string]string
	modules  map[string]bool
	exports  map[string]map[string]bool
	deferred []deferredLoader
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		owners:  make(map[string]string),
		modules: make(map[string]bool),
		exports: make(map[string]map[string]bool),
	}
}

func (r *Registry) Register(entry *Entry, module string) error {
	if _, exists := r.entries[entry.Key]; exists {
		return &TokenError{Token: entry.Key, Err: ErrDuplicateProvider}
	}

	r.entries[entry.Key] = entry
	r.order = append(r.order, entry.Key)
	if module != "" {
		r.owners[entry.Key] = module
	}
	return nil
}

func (r *Registry) Has(key string) bool {
	_, exists := r.entries[key]
	return exists
}

func (r *Registry) Get(key string) (*Entry, bool) {
	entry, exists := r.entries[key]
	return entry, exists
}

// Keys returns registered keys in registration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

func (r *Registry) Size() int {
	return len(r.order)
}

func (r *Registry) Owner(key string) string {
	return r.owners[key]
}

// MarkModule records a module as loaded. It reports false if the module was
// already loaded.
func (r *Registry) MarkModule(name string) bool {
	if r.modules[name] {
		return false
	}
	r.modules[name] = true
	return true
}

func (r *Registry) AddExports(module string, keys []string) {
	set, ok := r.exports[module]
	if !ok {
		set = make(map[string]bool, len(keys))
		r.exports[module] = set
	}
	for _, key := range keys {
		set[key] = true
	}
}

// IsExported reports whether any loaded module exports key.
func (r *Registry) IsExported(key string) bool {
	for _, set := range r.exports {
		if set[key] {
			return true
		}
	}
	return false
}

func (r *Registry) Exports(module string) []string {
	set := r.exports[module]
	keys := make([]string, 0, len(set))
	for _, key := range r.order {
		if set[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

func (r *Registry) AddDeferred(module string, load DeferredFunc) {
	r.deferred = append(r.deferred, deferredLoader{module: module, load: load})
}

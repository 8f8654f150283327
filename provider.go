package kiln

import (
	"context"
	"fmt"

	"github.com/danpasecinic/kiln/internal/container"
	kreflect "github.com/danpasecinic/kiln/internal/reflect"
)

// Provider describes how to produce the value for one token. The only
// implementations are *ClassProvider, *ValueProvider and *FactoryProvider.
type Provider interface {
	Token() Token
	Dependencies() []Token
	isProvider()
}

// Declaration is anything that can be lowered to a Provider, such as a
// *ClassDef.
type Declaration interface {
	Provider() Provider
}

// ClassProvider builds its value by calling a constructor with the resolved
// dependencies.
type ClassProvider struct {
	token     Token
	deps      []Token
	ctor      *kreflect.Constructor
	onInit    []container.HookBinder
	onDestroy []container.HookBinder
	err       error
}

func (p *ClassProvider) Token() Token          { return p.token }
func (p *ClassProvider) Dependencies() []Token { return p.deps }
func (*ClassProvider) isProvider()             {}

// ValueProvider supplies a value that already exists.
type ValueProvider struct {
	token Token
	value any
}

func (p *ValueProvider) Token() Token        { return p.token }
func (*ValueProvider) Dependencies() []Token { return nil }
func (*ValueProvider) isProvider()           {}

func (p *ValueProvider) Value() any {
	return p.value
}

// FactoryFunc produces a value from positional dependencies. It may block.
type FactoryFunc func(ctx context.Context, args Args) (any, error)

type FactoryProvider struct {
	token Token
	deps  []Token
	fn    FactoryFunc
}

func (p *FactoryProvider) Token() Token          { return p.token }
func (p *FactoryProvider) Dependencies() []Token { return p.deps }
func (*FactoryProvider) isProvider()             {}

func Value(token Token, value any) *ValueProvider {
	return &ValueProvider{token: token, value: value}
}

// Instance registers value under TypeOf[T].
func Instance[T any](value T) *ValueProvider {
	return &ValueProvider{token: TypeOf[T](), value: value}
}

func Factory(token Token, fn FactoryFunc, deps ...Token) *FactoryProvider {
	return &FactoryProvider{token: token, deps: deps, fn: fn}
}

// FactoryOf is Factory with a typed result.
func FactoryOf[T any](
	token TokenOf[T],
	fn func(ctx context.Context, args Args) (T, error),
	deps ...Token,
) *FactoryProvider {
	var wrapped FactoryFunc
	if fn != nil {
		wrapped = func(ctx context.Context, args Args) (any, error) {
			return fn(ctx, args)
		}
	}
	return &FactoryProvider{token: token, deps: deps, fn: wrapped}
}

// Args holds resolved dependencies in declaration order.
type Args []any

func (a Args) Len() int {
	return len(a)
}

// Arg returns args[i] as a T.
func Arg[T any](args Args, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("argument %d out of range (have %d)", i, len(args))
	}
	if args[i] == nil {
		return zero, nil
	}

	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("argument %d is %T, not %s", i, args[i], kreflect.TypeName[T]())
	}
	return v, nil
}

func lower(item any) (*container.Entry, error) {
	switch v := item.(type) {
	case nil:
		return nil, errInvalidDeclaration("nil is not a provider", nil)
	case Provider:
		return lowerProvider(v)
	case Declaration:
		if kreflect.IsNil(v) {
			return nil, errInvalidDeclaration(fmt.Sprintf("nil %T is not a provider", v), nil)
		}
		return lowerProvider(v.Provider())
	}

	if kreflect.IsFunc(item) {
		return nil, errInvalidDeclaration(
			fmt.Sprintf("constructor %s has no declaration; wrap it with Class or Factory",
				kreflect.TypeNameFromValue(item)),
			nil,
		)
	}
	return nil, errInvalidDeclaration(fmt.Sprintf("%T is not a provider", item), nil)
}

func lowerProvider(p Provider) (*container.Entry, error) {
	if kreflect.IsNil(p) {
		return nil, errInvalidDeclaration(fmt.Sprintf("nil %T is not a provider", p), nil)
	}

	key := Normalize(p.Token())
	if key == "" {
		return nil, errInvalidDeclaration(fmt.Sprintf("%T has no token", p), nil)
	}

	deps := normalizeAll(p.Dependencies())
	for i, dep := range deps {
		if dep == "" {
			return nil, errInvalidDeclaration(
				fmt.Sprintf("dependency %d has no token", i), nil,
			).WithService(key)
		}
	}

	entry := &container.Entry{Key: key, Dependencies: deps}

	switch p := p.(type) {
	case *ClassProvider:
		if p.err != nil {
			return nil, errInvalidDeclaration("invalid class declaration", p.err).WithService(key)
		}
		entry.Kind = container.KindClass
		entry.Construct = func(_ context.Context, args []any) (any, error) {
			return p.ctor.Call(args)
		}
		entry.OnInit = p.onInit
		entry.OnDestroy = p.onDestroy

	case *ValueProvider:
		entry.Kind = container.KindValue
		entry.Construct = func(context.Context, []any) (any, error) {
			return p.value, nil
		}

	case *FactoryProvider:
		if p.fn == nil {
			return nil, errInvalidDeclaration("factory function is nil", nil).WithService(key)
		}
		entry.Kind = container.KindFactory
		entry.Construct = func(ctx context.Context, args []any) (any, error) {
			return p.fn(ctx, Args(args))
		}

	default:
		return nil, errInvalidDeclaration(fmt.Sprintf("%T is not a provider", p), nil)
	}

	return entry, nil
}

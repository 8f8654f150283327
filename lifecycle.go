package kiln

import (
	"context"
	"fmt"

	"github.com/danpasecinic/kiln/internal/container"
	"github.com/danpasecinic/kiln/internal/graph"
	kreflect "github.com/danpasecinic/kiln/internal/reflect"
)

// Hook is a lifecycle callback bound to a built instance.
type Hook = graph.Hook

// ClassDef declares a class provider for values of type T together with its
// lifecycle hooks. Declaration errors are kept on the definition and reported
// when it is registered.
type ClassDef[T any] struct {
	token     Token
	deps      []Token
	ctor      *kreflect.Constructor
	onInit    []container.HookBinder
	onDestroy []container.HookBinder
	err       error
}

// Class declares constructor as the provider of T. The constructor must take
// one parameter per dependency and return T or (T, error).
func Class[T any](constructor any, deps ...Token) *ClassDef[T] {
	def := &ClassDef[T]{
		token: TypeOf[T](),
		deps:  deps,
	}

	ctor, err := kreflect.InspectConstructor(constructor, len(deps), kreflect.TypeFor[T]())
	if err != nil {
		def.err = err
		return def
	}
	def.ctor = ctor
	return def
}

// As registers the class under token instead of TypeOf[T].
func (d *ClassDef[T]) As(token TokenOf[T]) *ClassDef[T] {
	d.token = token
	return d
}

func (d *ClassDef[T]) OnInit(fn func(T, context.Context) error) *ClassDef[T] {
	d.onInit = append(d.onInit, bindFunc(fn))
	return d
}

func (d *ClassDef[T]) OnDestroy(fn func(T, context.Context) error) *ClassDef[T] {
	d.onDestroy = append(d.onDestroy, bindFunc(fn))
	return d
}

// OnInitMethod runs the named method of the instance on Init.
func (d *ClassDef[T]) OnInitMethod(name string) *ClassDef[T] {
	d.checkMethod(name)
	d.onInit = append(d.onInit, bindMethod(name))
	return d
}

// OnDestroyMethod runs the named method of the instance on Destroy.
func (d *ClassDef[T]) OnDestroyMethod(name string) *ClassDef[T] {
	d.checkMethod(name)
	d.onDestroy = append(d.onDestroy, bindMethod(name))
	return d
}

func (d *ClassDef[T]) checkMethod(name string) {
	if d.err != nil {
		return
	}
	if err := kreflect.CheckHookMethod(kreflect.TypeFor[T](), name); err != nil {
		d.err = err
	}
}

func (d *ClassDef[T]) Err() error {
	return d.err
}

func (d *ClassDef[T]) Provider() Provider {
	return &ClassProvider{
		token:     d.token,
		deps:      d.deps,
		ctor:      d.ctor,
		onInit:    d.onInit,
		onDestroy: d.onDestroy,
		err:       d.err,
	}
}

func bindFunc[T any](fn func(T, context.Context) error) container.HookBinder {
	return func(instance any) (graph.Hook, error) {
		if fn == nil {
			return nil, fmt.Errorf("hook function is nil")
		}

		var v T
		if instance != nil {
			typed, ok := instance.(T)
			if !ok {
				return nil, fmt.Errorf("instance is %T, not %s", instance, kreflect.TypeName[T]())
			}
			v = typed
		}

		return func(ctx context.Context) error {
			return fn(v, ctx)
		}, nil
	}
}

func bindMethod(name string) container.HookBinder {
	return func(instance any) (graph.Hook, error) {
		hook, err := kreflect.BindHookMethod(instance, name)
		if err != nil {
			return nil, err
		}
		return hook, nil
	}
}

package reflect

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

var typeKeyCache sync.Map

var (
	errorType   = reflect.TypeFor[error]()
	contextType = reflect.TypeFor[context.Context]()
)

func TypeKey[T any]() string {
	return typeKeyFromReflect(TypeFor[T]())
}

// TypeFor returns the static type of T, including interface types.
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func typeKeyFromReflect(t reflect.Type) string {
	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

func buildTypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeKey(t.Elem())
		default:
			return "chan " + buildTypeKey(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
}

func TypeKeyFromValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeKeyFromReflect(reflect.TypeOf(v))
}

func TypeName[T any]() string {
	return TypeFor[T]().String()
}

func TypeNameFromValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

func IsFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Constructor is a validated constructor function: func(args...) T or
// func(args...) (T, error).
type Constructor struct {
	fn       reflect.Value
	params   []reflect.Type
	out      reflect.Type
	hasError bool
}

// InspectConstructor checks that fn takes exactly arity parameters and
// returns a value assignable to want, optionally followed by an error.
func InspectConstructor(fn any, arity int, want reflect.Type) (*Constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("constructor is nil")
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %s", fnType)
	}
	if fnVal.IsNil() {
		return nil, fmt.Errorf("constructor is a nil %s", fnType)
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("constructor %s must not be variadic", fnType)
	}
	if fnType.NumIn() != arity {
		return nil, fmt.Errorf(
			"constructor %s takes %d parameters but %d dependencies were declared",
			fnType, fnType.NumIn(), arity,
		)
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("constructor %s: second return value must be error", fnType)
		}
	default:
		return nil, fmt.Errorf("constructor %s must return (T) or (T, error)", fnType)
	}

	out := fnType.Out(0)
	if want != nil && !out.AssignableTo(want) {
		return nil, fmt.Errorf("constructor returns %s, expected %s", out, want)
	}

	params := make([]reflect.Type, arity)
	for i := range params {
		params[i] = fnType.In(i)
	}

	return &Constructor{
		fn:       fnVal,
		params:   params,
		out:      out,
		hasError: fnType.NumOut() == 2,
	}, nil
}

func (c *Constructor) String() string {
	return c.fn.Type().String()
}

// Call invokes the constructor with positional arguments.
func (c *Constructor) Call(args []any) (any, error) {
	if len(args) != len(c.params) {
		return nil, fmt.Errorf("constructor %s expects %d arguments, got %d", c, len(c.params), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, err := argumentValue(arg, c.params[i])
		if err != nil {
			return nil, &ArgumentError{Index: i, Err: err}
		}
		in[i] = v
	}

	results := c.fn.Call(in)
	if c.hasError && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}

// ArgumentError reports a resolved value that cannot be passed to a
// constructor parameter.
type ArgumentError struct {
	Index int
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %d: %v", e.Index, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

func argumentValue(arg any, param reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch param.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(param), nil
		default:
			return reflect.Value{}, fmt.Errorf("cannot use nil as %s", param)
		}
	}

	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(param) {
		return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), param)
	}
	return v, nil
}

// CheckHookMethod verifies that t has an exported method name with a
// signature usable as a lifecycle hook.
func CheckHookMethod(t reflect.Type, name string) error {
	m, ok := t.MethodByName(name)
	if !ok {
		return fmt.Errorf("type %s has no method %s", t, name)
	}

	mt := m.Type
	if t.Kind() != reflect.Interface {
		// Drop the receiver.
		in := make([]reflect.Type, 0, mt.NumIn()-1)
		for i := 1; i < mt.NumIn(); i++ {
			in = append(in, mt.In(i))
		}
		out := make([]reflect.Type, 0, mt.NumOut())
		for i := 0; i < mt.NumOut(); i++ {
			out = append(out, mt.Out(i))
		}
		mt = reflect.FuncOf(in, out, false)
	}

	if !isHookSignature(mt) {
		return fmt.Errorf("method %s.%s has signature %s; want func(), func() error, "+
			"func(context.Context) or func(context.Context) error", t, name, mt)
	}
	return nil
}

// BindHookMethod returns the named method of instance as a hook function.
func BindHookMethod(instance any, name string) (func(ctx context.Context) error, error) {
	if IsNil(instance) {
		return nil, fmt.Errorf("cannot bind method %s on nil instance", name)
	}

	m := reflect.ValueOf(instance).MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("type %T has no method %s", instance, name)
	}
	if !isHookSignature(m.Type()) {
		return nil, fmt.Errorf("method %T.%s has signature %s", instance, name, m.Type())
	}

	takesCtx := m.Type().NumIn() == 1
	returnsErr := m.Type().NumOut() == 1

	return func(ctx context.Context) error {
		var in []reflect.Value
		if takesCtx {
			in = []reflect.Value{reflect.ValueOf(&ctx).Elem()}
		}
		out := m.Call(in)
		if returnsErr && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, nil
}

func isHookSignature(ft reflect.Type) bool {
	if ft.IsVariadic() || ft.NumIn() > 1 || ft.NumOut() > 1 {
		return false
	}
	if ft.NumIn() == 1 && ft.In(0) != contextType {
		return false
	}
	if ft.NumOut() == 1 && ft.Out(0) != errorType {
		return false
	}
	return true
}

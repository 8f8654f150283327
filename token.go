package kiln

import (
	kreflect "github.com/danpasecinic/kiln/internal/reflect"
)

// Token identifies a provider. Two tokens are equal when their normalized
// forms are equal.
type Token interface {
	ID() string
}

// TokenOf is a Token that carries the type of the value it identifies.
type TokenOf[T any] interface {
	Token
	valueType(T)
}

// Named is a string token with a phantom value type.
type Named[T any] struct {
	name string
}

func NewToken[T any](name string) Named[T] {
	return Named[T]{name: name}
}

// Name builds an untyped string token.
func Name(name string) Named[any] {
	return Named[any]{name: name}
}

func (n Named[T]) ID() string {
	return n.name
}

func (n Named[T]) String() string {
	return n.name
}

func (Named[T]) valueType(T) {}

// Type identifies a provider by the Go type it produces.
type Type[T any] struct{}

func TypeOf[T any]() Type[T] {
	return Type[T]{}
}

func (Type[T]) ID() string {
	return kreflect.TypeKey[T]()
}

func (t Type[T]) String() string {
	return t.ID()
}

func (Type[T]) valueType(T) {}

// Normalize returns the key a token is registered under. A nil token
// normalizes to the empty string.
func Normalize(t Token) string {
	if t == nil || kreflect.IsNil(t) {
		return ""
	}
	return t.ID()
}

func normalizeAll(tokens []Token) []string {
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = Normalize(t)
	}
	return keys
}

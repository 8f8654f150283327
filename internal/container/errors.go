package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyBuilt       = errors.New("container already built")
	ErrDuplicateProvider  = errors.New("provider already registered")
	ErrProviderNotFound   = errors.New("no provider registered")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrInstanceNotFound   = errors.New("instance not in container")
	ErrDestroyed          = errors.New("container destroyed")
	ErrInvalidHook        = errors.New("invalid lifecycle hook")
)

// TokenError attaches the offending token to a sentinel error.
type TokenError struct {
	Token string
	Err   error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Token)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// MissingError is returned when a dependency has no provider.
type MissingError struct {
	Token      string
	RequiredBy string
}

func (e *MissingError) Error() string {
	if e.RequiredBy == "" {
		return fmt.Sprintf("no provider registered for %s", e.Token)
	}
	return fmt.Sprintf("no provider registered for %s (required by %s)", e.Token, e.RequiredBy)
}

func (e *MissingError) Is(target error) bool {
	return target == ErrProviderNotFound
}

// CycleError is returned when instantiation re-enters a token that is still
// being built. Chain starts and ends with Token.
type CycleError struct {
	Token string
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected at %s: %s", e.Token, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCircularDependency
}

// ProviderError wraps a failure returned by a constructor or factory.
type ProviderError struct {
	Token string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider for %s failed: %v", e.Token, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ModuleError wraps a failure raised while loading a module's deferred
// providers.
type ModuleError struct {
	Module string
	Err    error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s: %v", e.Module, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

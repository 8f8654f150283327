package kiln

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danpasecinic/kiln/internal/container"
	"github.com/danpasecinic/kiln/internal/graph"
	kreflect "github.com/danpasecinic/kiln/internal/reflect"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeServiceNotFound
	ErrCodeCircularDependency
	ErrCodeDuplicateService
	ErrCodeResolutionFailed
	ErrCodeProviderFailed
	ErrCodeInvalidDeclaration
	ErrCodeContainerAlreadyBuilt
	ErrCodeInstanceNotFound
	ErrCodeContainerDestroyed
	ErrCodeModuleApplyFailed
	ErrCodeHealthCheckFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:               "UNKNOWN",
	ErrCodeServiceNotFound:       "SERVICE_NOT_FOUND",
	ErrCodeCircularDependency:    "CIRCULAR_DEPENDENCY",
	ErrCodeDuplicateService:      "DUPLICATE_SERVICE",
	ErrCodeResolutionFailed:      "RESOLUTION_FAILED",
	ErrCodeProviderFailed:        "PROVIDER_FAILED",
	ErrCodeInvalidDeclaration:    "INVALID_DECLARATION",
	ErrCodeContainerAlreadyBuilt: "CONTAINER_ALREADY_BUILT",
	ErrCodeInstanceNotFound:      "INSTANCE_NOT_FOUND",
	ErrCodeContainerDestroyed:    "CONTAINER_DESTROYED",
	ErrCodeModuleApplyFailed:     "MODULE_APPLY_FAILED",
	ErrCodeHealthCheckFailed:     "HEALTH_CHECK_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

type Error struct {
	Code    ErrorCode
	Message string
	Service string
	Cause   error
	Stack   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Service != "" {
		b.WriteString(fmt.Sprintf(" service=%q:", e.Service))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

func (e *Error) WithStack(stack []string) *Error {
	e.Stack = stack
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func errServiceNotFound(token, requiredBy string) *Error {
	msg := fmt.Sprintf("no provider registered for %s", token)
	if requiredBy != "" {
		msg += fmt.Sprintf(" (required by %s)", requiredBy)
	}
	return newError(ErrCodeServiceNotFound, msg, nil).WithService(token)
}

func errCircularDependency(token string, chain []string) *Error {
	return newError(
		ErrCodeCircularDependency,
		fmt.Sprintf("circular dependency detected at %s: %s", token, strings.Join(chain, " -> ")),
		nil,
	).WithService(token).WithStack(chain)
}

func errDuplicateService(token string) *Error {
	return newError(
		ErrCodeDuplicateService,
		fmt.Sprintf("provider already registered for %s", token),
		nil,
	).WithService(token)
}

func errResolutionFailed(token string, cause error) *Error {
	return newError(
		ErrCodeResolutionFailed,
		fmt.Sprintf("failed to resolve %s", token),
		cause,
	).WithService(token)
}

func errProviderFailed(token string, cause error) *Error {
	return newError(
		ErrCodeProviderFailed,
		fmt.Sprintf("provider for %s returned error", token),
		cause,
	).WithService(token)
}

func errInvalidDeclaration(message string, cause error) *Error {
	return newError(ErrCodeInvalidDeclaration, message, cause)
}

func errAlreadyBuilt() *Error {
	return newError(ErrCodeContainerAlreadyBuilt, "container already built", nil)
}

func errInstanceNotFound(token string) *Error {
	return newError(
		ErrCodeInstanceNotFound,
		fmt.Sprintf("no instance for %s", token),
		nil,
	).WithService(token)
}

func errContainerDestroyed() *Error {
	return newError(ErrCodeContainerDestroyed, "container already destroyed", nil)
}

func errModuleApplyFailed(module string, cause error) *Error {
	return newError(
		ErrCodeModuleApplyFailed,
		fmt.Sprintf("failed to apply module %s", module),
		cause,
	)
}

func errHealthCheckFailed(token string, cause error) *Error {
	return newError(
		ErrCodeHealthCheckFailed,
		fmt.Sprintf("health check failed for %s", token),
		cause,
	).WithService(token)
}

// translate maps errors from the internal packages to *Error. Errors that
// are already *Error pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}

	var (
		missing    *container.MissingError
		cycle      *container.CycleError
		graphCycle *graph.CycleError
		tokenErr   *container.TokenError
		argErr     *kreflect.ArgumentError
		providerErr *container.ProviderError
		moduleErr  *container.ModuleError
		declared   *Error
	)

	switch {
	case errors.As(err, &missing):
		return errServiceNotFound(missing.Token, missing.RequiredBy)

	case errors.As(err, &cycle):
		return errCircularDependency(cycle.Token, cycle.Chain)

	case errors.As(err, &graphCycle):
		e := newError(ErrCodeCircularDependency, graphCycle.Error(), nil)
		if len(graphCycle.Cycles) > 0 {
			e.WithStack(graphCycle.Cycles[0])
		}
		return e

	case errors.Is(err, container.ErrDuplicateProvider):
		token := ""
		if errors.As(err, &tokenErr) {
			token = tokenErr.Token
		}
		return errDuplicateService(token)

	case errors.Is(err, container.ErrAlreadyBuilt):
		return errAlreadyBuilt()

	case errors.Is(err, container.ErrInvalidHook):
		if errors.As(err, &tokenErr) {
			return errInvalidDeclaration("cannot bind lifecycle hook", tokenErr.Err).WithService(tokenErr.Token)
		}
		return errInvalidDeclaration("cannot bind lifecycle hook", err)

	case errors.As(err, &argErr):
		token := ""
		if errors.As(err, &providerErr) {
			token = providerErr.Token
		}
		return errResolutionFailed(token, argErr)

	case errors.As(err, &providerErr):
		return errProviderFailed(providerErr.Token, providerErr.Err)

	case errors.As(err, &moduleErr):
		if errors.As(moduleErr.Err, &declared) {
			return declared
		}
		return errModuleApplyFailed(moduleErr.Module, moduleErr.Err)

	case errors.Is(err, container.ErrInstanceNotFound):
		token := ""
		if errors.As(err, &tokenErr) {
			token = tokenErr.Token
		}
		return errInstanceNotFound(token)

	case errors.Is(err, container.ErrDestroyed):
		return errContainerDestroyed()
	}

	return newError(ErrCodeUnknown, "container error", err)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeServiceNotFound)
}

func IsCircularDependency(err error) bool {
	return hasCode(err, ErrCodeCircularDependency)
}

func IsDuplicateService(err error) bool {
	return hasCode(err, ErrCodeDuplicateService)
}

func IsResolutionFailed(err error) bool {
	return hasCode(err, ErrCodeResolutionFailed)
}

func IsProviderFailed(err error) bool {
	return hasCode(err, ErrCodeProviderFailed)
}

func IsInvalidDeclaration(err error) bool {
	return hasCode(err, ErrCodeInvalidDeclaration)
}

func IsAlreadyBuilt(err error) bool {
	return hasCode(err, ErrCodeContainerAlreadyBuilt)
}

func IsInstanceNotFound(err error) bool {
	return hasCode(err, ErrCodeInstanceNotFound)
}

func IsDestroyed(err error) bool {
	return hasCode(err, ErrCodeContainerDestroyed)
}

func IsModuleApplyFailed(err error) bool {
	return hasCode(err, ErrCodeModuleApplyFailed)
}

func IsHealthCheckFailed(err error) bool {
	return hasCode(err, ErrCodeHealthCheckFailed)
}

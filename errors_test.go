package kiln

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/kiln/internal/container"
	"github.com/danpasecinic/kiln/internal/graph"
	kreflect "github.com/danpasecinic/kiln/internal/reflect"
)

func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SERVICE_NOT_FOUND", ErrCodeServiceNotFound.String())
	assert.Equal(t, "HEALTH_CHECK_FAILED", ErrCodeHealthCheckFailed.String())
	assert.Equal(t, "UNKNOWN(999)", ErrorCode(999).String())
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	err := errProviderFailed("db", errors.New("dial tcp: refused"))
	assert.Equal(t, `[PROVIDER_FAILED] service="db": provider for db returned error: dial tcp: refused`, err.Error())

	assert.Equal(t, "[CONTAINER_ALREADY_BUILT] container already built", errAlreadyBuilt().Error())
}

func TestError_IsMatchesCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", errServiceNotFound("A", "B"))
	assert.ErrorIs(t, err, &Error{Code: ErrCodeServiceNotFound})
	assert.NotErrorIs(t, err, &Error{Code: ErrCodeDuplicateService})
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	errUser := errors.New("user failure")

	tests := []struct {
		name    string
		err     error
		code    ErrorCode
		service string
	}{
		{
			name:    "missing",
			err:     &container.MissingError{Token: "A", RequiredBy: "B"},
			code:    ErrCodeServiceNotFound,
			service: "A",
		},
		{
			name:    "instantiation cycle",
			err:     &container.CycleError{Token: "X", Chain: []string{"X", "Y", "X"}},
			code:    ErrCodeCircularDependency,
			service: "X",
		},
		{
			name: "graph cycle",
			err:  &graph.CycleError{Cycles: [][]string{{"A", "B"}}},
			code: ErrCodeCircularDependency,
		},
		{
			name:    "duplicate",
			err:     &container.TokenError{Token: "A", Err: container.ErrDuplicateProvider},
			code:    ErrCodeDuplicateService,
			service: "A",
		},
		{
			name:    "duplicate from module",
			err:     &container.ModuleError{Module: "m", Err: &container.TokenError{Token: "A", Err: container.ErrDuplicateProvider}},
			code:    ErrCodeDuplicateService,
			service: "A",
		},
		{
			name: "already built",
			err:  container.ErrAlreadyBuilt,
			code: ErrCodeContainerAlreadyBuilt,
		},
		{
			name:    "invalid hook",
			err:     &container.TokenError{Token: "A", Err: fmt.Errorf("%w: %w", container.ErrInvalidHook, errUser)},
			code:    ErrCodeInvalidDeclaration,
			service: "A",
		},
		{
			name:    "argument mismatch",
			err:     &container.ProviderError{Token: "A", Err: &kreflect.ArgumentError{Index: 0, Err: errUser}},
			code:    ErrCodeResolutionFailed,
			service: "A",
		},
		{
			name:    "provider",
			err:     &container.ProviderError{Token: "A", Err: errUser},
			code:    ErrCodeProviderFailed,
			service: "A",
		},
		{
			name: "module",
			err:  &container.ModuleError{Module: "m", Err: errUser},
			code: ErrCodeModuleApplyFailed,
		},
		{
			name:    "instance not found",
			err:     &container.TokenError{Token: "A", Err: container.ErrInstanceNotFound},
			code:    ErrCodeInstanceNotFound,
			service: "A",
		},
		{
			name: "destroyed",
			err:  container.ErrDestroyed,
			code: ErrCodeContainerDestroyed,
		},
		{
			name: "unknown",
			err:  errUser,
			code: ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var kerr *Error
			require.ErrorAs(t, translate(tt.err), &kerr)
			assert.Equal(t, tt.code, kerr.Code)
			assert.Equal(t, tt.service, kerr.Service)
		})
	}
}

func TestTranslate_KeepsCause(t *testing.T) {
	t.Parallel()

	errUser := errors.New("user failure")

	assert.ErrorIs(t, translate(&container.ProviderError{Token: "A", Err: errUser}), errUser)
	assert.ErrorIs(t, translate(&container.ModuleError{Module: "m", Err: errUser}), errUser)
	assert.Nil(t, translate(nil))

	declared := errInvalidDeclaration("bad", nil)
	assert.Same(t, declared, translate(declared))
}

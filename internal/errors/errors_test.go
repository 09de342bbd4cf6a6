package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	e := NotFound("animal not found")
	assert.Equal(t, "animal not found", e.Error())

	wrapped := Wrap(errors.New("boom"), ErrCodeInternal, "query failed")
	assert.Equal(t, "query failed: boom", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := Wrap(cause, ErrCodeUnavailable, "redis down")

	assert.True(t, errors.Is(e, cause))

	var appErr *AppError
	require.True(t, errors.As(fmt.Errorf("outer: %w", e), &appErr))
	assert.Equal(t, ErrCodeUnavailable, appErr.Code)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "nothing %d", 1))
}

func TestCodePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsConflict(Conflict("x")))
	assert.True(t, IsValidation(ValidationField("name", "x")))
	assert.True(t, IsUnauthorized(Unauthorized("x")))
	assert.True(t, IsForbidden(Forbidden("x")))
	assert.True(t, IsUnavailable(Unavailable("x")))

	assert.False(t, IsNotFound(Conflict("x")))
	assert.False(t, IsForbidden(errors.New("plain")))
}

func TestGetCodeAndField(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, GetCode(ValidationField("email", "required")))
	assert.Equal(t, "email", GetField(ValidationField("email", "required")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, "", GetField(errors.New("plain")))
}

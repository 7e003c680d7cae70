package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("send request: %w", NewAlreadyConnected("a", "b"))

	assert.Equal(t, ErrorTypeConflict, TypeOf(err))
	assert.Equal(t, ReasonAlreadyConnected, ReasonOf(err))
	assert.True(t, IsErrorType(err, ErrorTypeConflict))
	assert.True(t, IsReason(err, ReasonAlreadyConnected))
	assert.False(t, IsErrorType(err, ErrorTypeNotFound))
}

func TestTypeOf_PlainError(t *testing.T) {
	err := stderrors.New("boom")

	assert.Equal(t, ErrorType(""), TypeOf(err))
	assert.Equal(t, Reason(""), ReasonOf(err))
	assert.False(t, IsErrorType(nil, ErrorTypeNotFound))
}

func TestIsRetryable(t *testing.T) {
	cause := stderrors.New("connection reset")
	unavailable := NewStoreUnavailable("get user", cause)

	assert.True(t, IsRetryable(unavailable))
	assert.True(t, stderrors.Is(unavailable, cause))

	for _, err := range []error{
		NewSelfRequest(),
		NewUserNotFound("u1"),
		NewNotOwner("post", "u1"),
		NewRequestAlreadyPending("a", "b"),
	} {
		assert.False(t, IsRetryable(err), err.Error())
	}
}

func TestBaseError_Message(t *testing.T) {
	assert.Equal(t, "[not_found] post not found: p1", NewPostNotFound("p1").Error())
	assert.Equal(t,
		"[unavailable] store operation failed: list posts: timeout",
		NewStoreUnavailable("list posts", stderrors.New("timeout")).Error(),
	)
}

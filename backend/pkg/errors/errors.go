package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing user, post or comment
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeForbidden represents a caller acting on something it does not own
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeInvalidInput represents bad caller input (empty content, self-targeting, malformed IDs)
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeConflict represents a transition that the current state does not allow
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeUnavailable represents store I/O failures
	ErrorTypeUnavailable ErrorType = "unavailable"
	// ErrorTypeUnauthorized represents a missing or rejected caller credential
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Reason is a machine-readable code that narrows an ErrorType
type Reason string

const (
	ReasonSelfRequest           Reason = "SelfRequest"
	ReasonTargetNotFound        Reason = "TargetNotFound"
	ReasonSenderNotFound        Reason = "SenderNotFound"
	ReasonUserNotFound          Reason = "UserNotFound"
	ReasonAlreadyConnected      Reason = "AlreadyConnected"
	ReasonRequestAlreadyPending Reason = "RequestAlreadyPending"
	ReasonRequestNotFound       Reason = "RequestNotFound"
	ReasonEmptyContent          Reason = "EmptyContent"
	ReasonContentTooLong        Reason = "ContentTooLong"
	ReasonPostNotFound          Reason = "PostNotFound"
	ReasonCommentNotFound       Reason = "CommentNotFound"
	ReasonEmailTaken            Reason = "EmailTaken"
	ReasonNotOwner              Reason = "NotOwner"
	ReasonValidation            Reason = "Validation"
	ReasonStoreFailure          Reason = "StoreFailure"
	ReasonMissingCredential     Reason = "MissingCredential"
	ReasonInvalidCredential     Reason = "InvalidCredential"
	ReasonMissingConfig         Reason = "MissingConfig"
	ReasonInvalidConfig         Reason = "InvalidConfig"
)

// BaseError is the error type returned by every core operation
type BaseError struct {
	Type      ErrorType
	Reason    Reason
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, reason Reason, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Reason:    reason,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Not found

func NewUserNotFound(userID string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, ReasonUserNotFound, fmt.Sprintf("user not found: %s", userID), nil)
}

func NewTargetNotFound(userID string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, ReasonTargetNotFound, fmt.Sprintf("target user not found: %s", userID), nil)
}

func NewSenderNotFound(userID string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, ReasonSenderNotFound, fmt.Sprintf("sender not found: %s", userID), nil)
}

func NewPostNotFound(postID string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, ReasonPostNotFound, fmt.Sprintf("post not found: %s", postID), nil)
}

func NewCommentNotFound(commentID string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, ReasonCommentNotFound, fmt.Sprintf("comment not found: %s", commentID), nil)
}

// NewRequestNotFound is returned when accepting a request that is not pending
func NewRequestNotFound(senderID string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, ReasonRequestNotFound, fmt.Sprintf("connection request not found from: %s", senderID), nil)
}

// Invalid input

func NewSelfRequest() *BaseError {
	return NewBaseError(ErrorTypeInvalidInput, ReasonSelfRequest, "cannot connect to yourself", nil)
}

func NewEmptyContent(field string) *BaseError {
	return NewBaseError(ErrorTypeInvalidInput, ReasonEmptyContent, fmt.Sprintf("%s cannot be empty", field), nil)
}

func NewContentTooLong(field string, max int) *BaseError {
	return NewBaseError(ErrorTypeInvalidInput, ReasonContentTooLong, fmt.Sprintf("%s must be at most %d characters", field, max), nil)
}

// NewInvalidInput covers validation failures that have no dedicated reason
func NewInvalidInput(message string) *BaseError {
	return NewBaseError(ErrorTypeInvalidInput, ReasonValidation, message, nil)
}

// Conflict

func NewAlreadyConnected(userID, otherID string) *BaseError {
	return NewBaseError(ErrorTypeConflict, ReasonAlreadyConnected, fmt.Sprintf("%s is already connected to %s", userID, otherID), nil)
}

func NewRequestAlreadyPending(senderID, targetID string) *BaseError {
	return NewBaseError(ErrorTypeConflict, ReasonRequestAlreadyPending, fmt.Sprintf("request from %s to %s already sent", senderID, targetID), nil)
}

func NewEmailTaken(email string) *BaseError {
	return NewBaseError(ErrorTypeConflict, ReasonEmailTaken, fmt.Sprintf("user already exists: %s", email), nil)
}

// Forbidden

// NewNotOwner is returned when a caller mutates a resource owned by someone else
func NewNotOwner(resource, callerID string) *BaseError {
	return NewBaseError(ErrorTypeForbidden, ReasonNotOwner, fmt.Sprintf("%s is not allowed to modify this %s", callerID, resource), nil)
}

// Unavailable

// NewStoreUnavailable wraps a failed store operation
func NewStoreUnavailable(operation string, err error) *BaseError {
	return NewBaseError(ErrorTypeUnavailable, ReasonStoreFailure, fmt.Sprintf("store operation failed: %s", operation), err)
}

// Unauthorized

func NewMissingCredential() *BaseError {
	return NewBaseError(ErrorTypeUnauthorized, ReasonMissingCredential, "no token, authorization denied", nil)
}

func NewInvalidCredential(err error) *BaseError {
	return NewBaseError(ErrorTypeUnauthorized, ReasonInvalidCredential, "token is not valid", err)
}

// Config

// NewConfigMissingRequired is returned when a required config value is missing
func NewConfigMissingRequired(field string) *BaseError {
	return NewBaseError(ErrorTypeConfig, ReasonMissingConfig, fmt.Sprintf("missing required config: %s", field), nil)
}

// NewConfigValidationFailed is returned when a config value is malformed
func NewConfigValidationFailed(field, reason string) *BaseError {
	return NewBaseError(ErrorTypeConfig, ReasonInvalidConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil)
}

// Helper functions

// TypeOf returns the ErrorType of the first BaseError in the chain, or "" if there is none
func TypeOf(err error) ErrorType {
	var baseErr *BaseError
	if stderrors.As(err, &baseErr) {
		return baseErr.Type
	}
	return ""
}

// ReasonOf returns the Reason of the first BaseError in the chain, or "" if there is none
func ReasonOf(err error) Reason {
	var baseErr *BaseError
	if stderrors.As(err, &baseErr) {
		return baseErr.Reason
	}
	return ""
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// IsReason checks if an error carries a specific reason
func IsReason(err error, reason Reason) bool {
	return err != nil && ReasonOf(err) == reason
}

// IsRetryable reports whether a caller may retry the operation.
// Everything except store unavailability is deterministic given the same state.
func IsRetryable(err error) bool {
	return IsErrorType(err, ErrorTypeUnavailable)
}

package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates a lookup by email or identifier matched nothing.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized indicates the caller's role does not satisfy the action's requirement.
	ErrUnauthorized = errors.New("insufficient permissions")
	// ErrInvalidInput indicates a required input was empty or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence wraps faults raised by the underlying store.
	ErrPersistence = errors.New("persistence failure")
)

var (
	// ErrIdentityNotFound indicates no identity matches the requested email.
	ErrIdentityNotFound = fmt.Errorf("%w: no user with that email", ErrNotFound)
	// ErrAssignmentNotFound indicates the role assignment row does not exist.
	ErrAssignmentNotFound = fmt.Errorf("%w: role assignment", ErrNotFound)
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = fmt.Errorf("%w: course", ErrNotFound)
	// ErrMessageNotFound indicates the message does not exist for the recipient.
	ErrMessageNotFound = fmt.Errorf("%w: message", ErrNotFound)
)

func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func invalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// notFoundOr maps gorm.ErrRecordNotFound to target and wraps everything else as a persistence fault.
func notFoundOr(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return persistenceError(err)
}

package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state transition")
)

// ValidationError carries per-field violations back to the client.
type ValidationError struct {
	Details []utils.ValidationError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s %s", e.Details[0].Field, e.Details[0].Message)
}

// validationFailed converts validator output into a *ValidationError and
// passes any other error through unchanged.
func validationFailed(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &ValidationError{Details: utils.GetValidationErrors(err)}
	}
	return err
}

func fieldError(field, tag, message string) *ValidationError {
	return &ValidationError{Details: []utils.ValidationError{{Field: field, Tag: tag, Message: message}}}
}

func validate(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return validationFailed(err)
	}
	return nil
}

// NotFoundError names the missing resource; it matches ErrNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports a unique-key clash; it matches ErrConflict.
type ConflictError struct {
	Resource string
	Field    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// RateLimitError is returned when a member exceeds the creation quota.
type RateLimitError struct {
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit of %d per %s exceeded, retry in %s", e.Limit, e.Window, e.RetryAfter.Round(time.Second))
}

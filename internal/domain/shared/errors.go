// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrAlreadyGranted  = errors.New("already granted")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "user", "prize", "achievement"
	Op      string // Operation that failed, e.g., "Grant", "Create"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound      = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrStudentNotFound   = NewDomainError("user", "Find", ErrNotFound, "student not found")
	ErrUserAlreadyExists = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrNotAStudent       = NewDomainError("user", "CheckRole", ErrInvalidState, "user is not a student")
	ErrInvalidRole       = NewDomainError("user", "Validate", ErrInvalidInput, "invalid user role")
)

// Prize domain errors
var (
	ErrPrizeNotFound      = NewDomainError("prize", "Find", ErrNotFound, "prize not found")
	ErrInvalidPrizeKind   = NewDomainError("prize", "Validate", ErrInvalidInput, "invalid prize kind")
	ErrPrizeValueNegative = NewDomainError("prize", "Validate", ErrNegativeValue, "prize value cannot be negative")
)

// Achievement domain errors
var (
	ErrAchievementNotFound = NewDomainError("achievement", "Find", ErrNotFound, "achievement not found")
)

// Team domain errors
var (
	ErrTeamNotFound       = NewDomainError("team", "Find", ErrNotFound, "team not found")
	ErrMembershipNotFound = NewDomainError("team", "FindMember", ErrNotFound, "team membership not found")
	ErrDuplicateMember    = NewDomainError("team", "AddMember", ErrAlreadyExists, "user is already a member of this team")
	ErrInvalidScrumRole   = NewDomainError("team", "Validate", ErrInvalidInput, "invalid scrum role")
)

// Course domain errors
var (
	ErrCourseNotFound     = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrSubjectNotFound    = NewDomainError("course", "FindSubject", ErrNotFound, "subject not found")
	ErrAlreadyEnrolled    = NewDomainError("course", "Enroll", ErrAlreadyExists, "student already enrolled in course")
	ErrEnrollmentNotFound = NewDomainError("course", "FindEnrollment", ErrNotFound, "enrollment not found")
)

// Project domain errors
var (
	ErrProjectNotFound        = NewDomainError("project", "Find", ErrNotFound, "project not found")
	ErrSprintNotFound         = NewDomainError("project", "FindSprint", ErrNotFound, "sprint not found")
	ErrSprintAlreadyCompleted = NewDomainError("project", "CompleteSprint", ErrStateTransition, "sprint is already completed")
	ErrSprintDatesInverted    = NewDomainError("project", "ValidateSprint", ErrInvalidInput, "sprint end date cannot be before start date")
	ErrInvalidSprintState     = NewDomainError("project", "ValidateSprint", ErrInvalidInput, "invalid sprint state")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsStateTransition checks if the error is an invalid state transition.
func IsStateTransition(err error) bool {
	return errors.Is(err, ErrStateTransition)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}

package entities

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrMemberNotFound     = errors.New("team member not found")
	ErrTodoNotFound       = errors.New("todo item not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidDateKey     = errors.New("invalid date key")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAccountInactive    = errors.New("account is inactive")
)

// ValidationError reports a required field that is missing or malformed.
// It is raised before any request leaves the process.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// RequestError reports a failed round-trip to the remote API: a non-2xx
// status, a transport failure or an expired timeout.
type RequestError struct {
	Op      string
	Status  int
	Timeout bool
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: request timed out", e.Op)
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Unauthorized reports whether the server rejected the credentials.
func (e *RequestError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// NotFoundError reports an id that does not exist in local state.
type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// Is lets errors.Is match the kind-specific sentinels.
func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrJobNotFound:
		return e.Kind == "job"
	case ErrMemberNotFound:
		return e.Kind == "team member"
	case ErrTodoNotFound:
		return e.Kind == "todo item"
	}
	return false
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRequest reports whether err is a RequestError.
func IsRequest(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

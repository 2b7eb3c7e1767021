package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/boardgame-tables/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the viewer lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a location alias is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrAlreadyJoined is returned when the user is already on the roster.
	ErrAlreadyJoined = errors.New("application: already joined")
	// ErrCapacityExceeded is returned when the table was full at the moment of joining.
	ErrCapacityExceeded = errors.New("application: table is full")
	// ErrInvalidCapacity is returned when max players would drop below the roster size.
	ErrInvalidCapacity = errors.New("application: capacity below joined players")
	// ErrBanned is returned when a banned user tries to book or propose.
	ErrBanned = errors.New("application: user is banned")
	// ErrDefaultLocation is returned when the default location would be removed.
	ErrDefaultLocation = errors.New("application: default location cannot be deleted")
	// ErrStorage wraps unexpected store failures. It is never retried here.
	ErrStorage = errors.New("application: storage failure")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v.FieldErrors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func fieldError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

// IsExpected reports whether err is a user facing domain outcome rather than
// a fault.
func IsExpected(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrInvalidCapacity),
		errors.Is(err, ErrBanned),
		errors.Is(err, ErrDefaultLocation):
		return true
	}
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// mapRepoError translates store errors into application errors. Anything the
// store could not classify is a storage fault.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrAlreadyJoined):
		return ErrAlreadyJoined
	case errors.Is(err, persistence.ErrCapacityExceeded):
		return ErrCapacityExceeded
	case errors.Is(err, persistence.ErrInvalidCapacity):
		return ErrInvalidCapacity
	case errors.Is(err, persistence.ErrDefaultLocation):
		return ErrDefaultLocation
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fieldError("location_id", "referenced record does not exist")
	}
	if IsExpected(err) || errors.Is(err, ErrStorage) {
		return err
	}
	return errors.Join(ErrStorage, err)
}

package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/boardgame-tables/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"max_players": "bad", "date": "missing"}}
	if got := withFields.Error(); got != "validation failed: date: missing; max_players: bad" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	if !fieldError("field", "bad").HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestMapRepoError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"not found", persistence.ErrNotFound, ErrNotFound},
		{"already joined", fmt.Errorf("%w: raised", persistence.ErrAlreadyJoined), ErrAlreadyJoined},
		{"capacity exceeded", fmt.Errorf("%w: raised", persistence.ErrCapacityExceeded), ErrCapacityExceeded},
		{"invalid capacity", persistence.ErrInvalidCapacity, ErrInvalidCapacity},
		{"default location", persistence.ErrDefaultLocation, ErrDefaultLocation},
		{"duplicate", persistence.ErrDuplicate, ErrAlreadyExists},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := mapRepoError(tc.in); !errors.Is(got, tc.want) {
				t.Fatalf("mapRepoError(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	t.Run("unknown errors are storage faults", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("disk I/O error")
		got := mapRepoError(cause)
		if !errors.Is(got, ErrStorage) || !errors.Is(got, cause) {
			t.Fatalf("expected storage fault wrapping cause, got %v", got)
		}
		if IsExpected(got) {
			t.Fatalf("storage faults must not be expected outcomes")
		}
	})

	t.Run("foreign key becomes validation", func(t *testing.T) {
		t.Parallel()
		var vErr *ValidationError
		if !errors.As(mapRepoError(persistence.ErrForeignKeyViolation), &vErr) {
			t.Fatalf("expected validation error")
		}
	})

	if mapRepoError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestIsExpected(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrAlreadyJoined, ErrCapacityExceeded, ErrInvalidCapacity, ErrNotFound, ErrBanned, fieldError("x", "y")} {
		if !IsExpected(err) {
			t.Fatalf("expected %v to be an expected outcome", err)
		}
	}
	for _, err := range []error{nil, ErrStorage, errors.New("boom")} {
		if IsExpected(err) {
			t.Fatalf("expected %v not to be an expected outcome", err)
		}
	}
}

package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record fails a check constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing record.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")

	// ErrAlreadyJoined is returned when a user joins a table twice.
	ErrAlreadyJoined = errors.New("persistence: already joined")
	// ErrCapacityExceeded is returned when a join would overbook a table.
	ErrCapacityExceeded = errors.New("persistence: capacity exceeded")
	// ErrInvalidCapacity is returned when max players drops below the roster size.
	ErrInvalidCapacity = errors.New("persistence: capacity below roster size")
	// ErrDefaultLocation is returned when a write would remove the default location.
	ErrDefaultLocation = errors.New("persistence: default location is protected")
)

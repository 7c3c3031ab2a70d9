package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrDuplicateIdempotencyKey = errors.New("booking with this idempotency key already exists")

	ErrLockHeld = errors.New("booking lock is held by another request")
)

package service

import "errors"

// Error taxonomy exposed to feature and command code. Callers test with
// errors.Is; anything outside this set is a store or platform failure and
// may be retried by the caller.
var (
	// ErrValidation reports input rejected before any lock was taken
	ErrValidation = errors.New("validation failed")

	// ErrNotFound reports an operation on a row that does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports an insert that conflicts with an existing row
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotOpen reports a close on a whisper that is already closed
	ErrNotOpen = errors.New("whisper not open")
)

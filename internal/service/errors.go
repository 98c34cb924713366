package service

import "errors"

var (
	ErrForbidden   = errors.New("not permitted")
	ErrInvalid     = errors.New("invalid request")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrPersistence = errors.New("change applied but could not be saved")
)

// Outcome tells the caller whether a write took effect or was queued.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomePending Outcome = "pending_approval"
)

// Applied reports whether err still means the in-memory change happened.
// A persistence failure does not undo the mutation.
func Applied(err error) bool {
	return err == nil || errors.Is(err, ErrPersistence)
}

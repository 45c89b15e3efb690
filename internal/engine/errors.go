package engine

import "errors"

// Validation failures returned by engine operations. Every operation is
// all-or-nothing: when one of these is returned, no state was written.
var (
	ErrInvalidTransition   = errors.New("invalid task transition")
	ErrMissingEvidence     = errors.New("verification photo required")
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrNotFound            = errors.New("not found")
	ErrLevelLocked         = errors.New("item locked behind a higher level")
	ErrAlreadyOwned        = errors.New("item already owned")
	ErrNotOwned            = errors.New("item not owned")
	ErrUnauthorized        = errors.New("caller role not allowed")
	ErrReasonRequired      = errors.New("rejection reason required")
)

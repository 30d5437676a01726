package repository

import "errors"

// Storage-level conflicts surfaced to the service layer. Services wrap these
// with context; the HTTP layer maps them to status codes.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrSlotUnavailable   = errors.New("slot is no longer available")
	ErrSlotReferenced    = errors.New("slot has an active appointment")
	ErrTeacherReferenced = errors.New("teacher has active appointments")
	ErrInvalidTransition = errors.New("appointment is not in a state that allows this change")
)

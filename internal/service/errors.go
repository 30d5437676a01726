package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotApproved        = errors.New("account is pending approval from an administrator")
	ErrForbidden          = errors.New("no permission for this operation")
	ErrPurposeRequired    = errors.New("purpose is required")
	ErrMissingFields      = errors.New("name, email and password are required")
)

package domain

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrAuthentication  = errors.New("authentication failed")
	ErrNotFound        = errors.New("not found")
	ErrWindowClosed    = errors.New("voting is currently closed")
	ErrEmptySubmission = errors.New("no votes to submit")
	ErrQuotaExceeded   = errors.New("vote limit exceeded")
	ErrConflict        = errors.New("already exists")
	ErrRateLimited     = errors.New("too many requests")
	ErrDelivery        = errors.New("code delivery failed")
)

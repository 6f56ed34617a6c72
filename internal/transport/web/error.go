package web

import "errors"

var (
	ErrPanic      = errors.New("panic recovered")
	ErrNoBookings = errors.New("booking manager is required")
)

package model

import "errors"

// Common errors used across the application
var (
	// Roster errors
	ErrPersonNotFound = errors.New("person not found")
	ErrMalformedRow   = errors.New("malformed row")

	// Clock errors
	ErrAlreadyClockedIn = errors.New("already clocked in")
	ErrNotClockedIn     = errors.New("not clocked in")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)

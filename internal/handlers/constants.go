package handlers

import "time"

const (
	CSRFHeaderName = "X-CSRF-Token"
	CSRFFormField  = "csrf_token"

	// AdvanceDelay is the pause after a correct answer before the next challenge is pushed
	AdvanceDelay = 400 * time.Millisecond

	ErrUnauthorized        = "Please log in to play"
	ErrInternalServerError = "Internal server error"
	ErrInvalidRequest      = "Invalid request"
	ErrInvalidCSRF         = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
)

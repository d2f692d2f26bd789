package apperr

import "net/http"

// Error is an application failure carrying the HTTP status it maps to.
// Handlers return these; the server's error handler renders the envelope
// {"error": {"message": ..., "status": ...}}.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Validation : malformed or missing input, caught before any store call.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Auth : missing/invalid token or credentials.
func Auth(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// NotFound : owned resource absent.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict : duplicate unique key. Observed behavior maps it to 400.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Store wraps an external data store failure. The raw driver message is
// surfaced with status 400, matching observed behavior.
func Store(err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: err.Error()}
}

package domain

import "net/http"

// Error carries a stable machine-readable code alongside the human message
// and the HTTP status it maps to at the gateway boundary.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Stable error codes, one per taxonomy entry.
const (
	CodeValidation          = "validation_error"
	CodeDuplicateEmail      = "duplicate_email"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeAccountDeactivated  = "account_deactivated"
	CodeInvalidToken        = "invalid_token"
	CodeInvalidRefreshToken = "invalid_refresh_token"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeInternal            = "internal_error"
)

var (
	ErrDuplicateEmail = newError(CodeDuplicateEmail, "User already exists with this email", http.StatusBadRequest)

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = newError(CodeInvalidCredentials, "Invalid email or password", http.StatusBadRequest)

	ErrAccountDeactivated  = newError(CodeAccountDeactivated, "Account is deactivated", http.StatusForbidden)
	ErrInvalidToken        = newError(CodeInvalidToken, "Invalid token", http.StatusUnauthorized)
	ErrInvalidRefreshToken = newError(CodeInvalidRefreshToken, "Invalid refresh token", http.StatusForbidden)
	ErrRefreshTokenMissing = newError(CodeUnauthorized, "Refresh token required", http.StatusUnauthorized)
	ErrAccessTokenMissing  = newError(CodeUnauthorized, "Access token required", http.StatusUnauthorized)
	ErrForbidden           = newError(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrUserNotFound        = newError(CodeNotFound, "User not found", http.StatusNotFound)
	ErrQuestionNotFound    = newError(CodeNotFound, "Question not found", http.StatusNotFound)
)

// ValidationError reports missing or malformed input with a per-field message.
func ValidationError(message string) *Error {
	return newError(CodeValidation, message, http.StatusBadRequest)
}

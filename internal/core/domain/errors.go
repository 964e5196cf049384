package domain

import "errors"

// Error kinds. Every domain failure unwraps to exactly one of these so the
// boundary can classify it with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
)

// Error is a domain failure carrying a user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NewValidationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NewAuthenticationError(msg string) error {
	return &Error{Kind: ErrAuthentication, Message: msg}
}

func NewAuthorizationError(msg string) error {
	return &Error{Kind: ErrAuthorization, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

var (
	ErrInvalidCredentials = NewAuthenticationError("invalid credentials")
	ErrSessionInvalid     = NewAuthenticationError("invalid or expired session")
	ErrUsernameTaken      = NewValidationError("username already taken")
	ErrTodoLimitReached   = NewValidationError("maximum number of todos reached")
	ErrUserNotFound       = NewNotFoundError("user not found")
	ErrSessionNotFound    = NewNotFoundError("session not found")
	ErrTodoNotFound       = NewNotFoundError("todo not found")
)

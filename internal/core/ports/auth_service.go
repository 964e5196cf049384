package ports

import (
	"context"

	"github.com/todoapp/todo-service/internal/core/domain"
)

type SignUpInput struct {
	Username string
	Password string
}

type SignInInput struct {
	Username string
	Password string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type UpdateUsernameInput struct {
	Username string
}

// AuthResult is returned by the use cases that open a session.
type AuthResult struct {
	Session *domain.Session
	Cookie  domain.Cookie
	User    domain.PublicUser
}

// AuthService is the account and session use-case surface seen by handlers.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, input SignInInput) (*AuthResult, error)
	// SignOut is idempotent: an unknown session is not an error.
	SignOut(ctx context.Context, sessionID string) error
	// GetUserIDFromSession fails with an authentication error when the
	// session is unknown, malformed or expired.
	GetUserIDFromSession(ctx context.Context, sessionID string) (string, error)
	ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error
	UpdateUsername(ctx context.Context, userID string, input UpdateUsernameInput) (domain.PublicUser, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

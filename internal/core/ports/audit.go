package ports

import (
	"context"
	"time"
)

type AuthEventType string

const (
	AuthEventSignUp         AuthEventType = "sign_up"
	AuthEventSignIn         AuthEventType = "sign_in"
	AuthEventSignOut        AuthEventType = "sign_out"
	AuthEventPasswordChange AuthEventType = "password_change"
	AuthEventUsernameChange AuthEventType = "username_change"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Type       AuthEventType
	Username   string
	UserID     string
	Success    bool
	Reason     string
	OccurredAt time.Time
}

// AuthAuditor records authentication events. Implementations are best
// effort; callers log failures and carry on.
type AuthAuditor interface {
	Record(ctx context.Context, event AuthEvent) error
}

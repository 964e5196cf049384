package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/todoapp/todo-service/internal/core/credential"
	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
)

// minSessionIDLength rejects obviously malformed tokens before any lookup.
const minSessionIDLength = 10

// SessionOptions controls the sessions and cookies AuthenticationService issues.
type SessionOptions struct {
	TTL        time.Duration
	CookieName string
	// Secure marks the cookie Secure. Set only in production.
	Secure bool
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.TTL <= 0 {
		o.TTL = domain.DefaultSessionTTL
	}
	if o.CookieName == "" {
		o.CookieName = domain.DefaultSessionCookieName
	}
	return o
}

// IssuedSession is a freshly created session and the cookie that carries it.
type IssuedSession struct {
	Session *domain.Session
	Cookie  domain.Cookie
}

// AuthenticationService issues, validates and revokes sessions. Writes are
// staged on the caller's unit of work; committing is the caller's job.
type AuthenticationService struct {
	sessions ports.SessionRepository
	opts     SessionOptions
	now      func() time.Time
}

func NewAuthenticationService(sessions ports.SessionRepository, opts SessionOptions) *AuthenticationService {
	return &AuthenticationService{
		sessions: sessions,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// CreateSession opens a session for user and stages it.
func (s *AuthenticationService) CreateSession(ctx context.Context, user *domain.User) (*IssuedSession, error) {
	id, err := credential.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session, err := domain.NewSession(id, user.ID, now.Add(s.opts.TTL), now)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &IssuedSession{Session: session, Cookie: s.cookieFor(session)}, nil
}

// ValidateSession resolves a token to its user and session. Storage failures
// are returned as is; every other failure is domain.ErrSessionInvalid.
func (s *AuthenticationService) ValidateSession(ctx context.Context, sessionID string) (*domain.User, *domain.Session, error) {
	if len(sessionID) < minSessionIDLength {
		return nil, nil, domain.ErrSessionInvalid
	}

	session, user, err := s.sessions.FindWithUser(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, nil, err
	}

	if !session.IsValidAt(s.now()) || user == nil {
		return nil, nil, domain.ErrSessionInvalid
	}

	return user, session, nil
}

// InvalidateSession tombstones the session. An unknown id is a no-op.
func (s *AuthenticationService) InvalidateSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	session.Expire(s.now().UTC())
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// PurgeExpired stages deletion of every session that expired before the cutoff.
func (s *AuthenticationService) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}

// ActiveSessions counts the user's sessions that have not expired yet.
func (s *AuthenticationService) ActiveSessions(ctx context.Context, userID string) (int, error) {
	n, err := s.sessions.CountActiveByUserID(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return n, nil
}

func (s *AuthenticationService) cookieFor(session *domain.Session) domain.Cookie {
	return domain.Cookie{
		Name:  s.opts.CookieName,
		Value: session.ID,
		Attributes: domain.CookieAttributes{
			HTTPOnly: true,
			Secure:   s.opts.Secure,
			SameSite: domain.SameSiteLax,
			Path:     "/",
			MaxAge:   int(s.opts.TTL / time.Second),
		},
	}
}

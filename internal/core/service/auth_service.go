package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/credential"
	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
	"github.com/todoapp/todo-service/internal/pkg/metrics"
)

// rehasher is implemented by hashers that can tell when a stored hash was
// produced by an outdated scheme.
type rehasher interface {
	NeedsRehash(hash string) bool
}

// AuthService implements the account and session use cases. Each mutating
// use case commits the unit of work exactly once.
type AuthService struct {
	users   ports.UserRepository
	authn   *AuthenticationService
	uow     ports.UnitOfWork
	hasher  domain.PasswordHasher
	auditor ports.AuthAuditor
	log     zerolog.Logger
	now     func() time.Time
}

// NewAuthService wires the use cases. auditor may be nil.
func NewAuthService(
	users ports.UserRepository,
	authn *AuthenticationService,
	uow ports.UnitOfWork,
	hasher domain.PasswordHasher,
	auditor ports.AuthAuditor,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		authn:   authn,
		uow:     uow,
		hasher:  hasher,
		auditor: auditor,
		log:     log,
		now:     time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (res *ports.AuthResult, err error) {
	defer func() { s.record(ctx, ports.AuthEventSignUp, in.Username, userIDOf(res), err) }()

	_, err = s.users.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	id, err := credential.GenerateUserID()
	if err != nil {
		return nil, err
	}

	user, err := domain.NewUser(id, in.Username, in.Password, s.hasher)
	if err != nil {
		return nil, err
	}

	if err = s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// SignIn reports domain.ErrInvalidCredentials for both an unknown username and
// a wrong password.
func (s *AuthService) SignIn(ctx context.Context, in ports.SignInInput) (res *ports.AuthResult, err error) {
	defer func() { s.record(ctx, ports.AuthEventSignIn, in.Username, userIDOf(res), err) }()

	user, err := s.users.FindByUsername(ctx, in.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err = user.Authenticate(in.Password, s.hasher); err != nil {
		return nil, err
	}

	if err = s.upgradeHash(ctx, user, in.Password); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

func (s *AuthService) SignOut(ctx context.Context, sessionID string) (err error) {
	defer func() { s.record(ctx, ports.AuthEventSignOut, "", "", err) }()

	if err = s.authn.InvalidateSession(ctx, sessionID); err != nil {
		return err
	}
	return s.uow.Commit(ctx)
}

func (s *AuthService) GetUserIDFromSession(ctx context.Context, sessionID string) (string, error) {
	user, _, err := s.authn.ValidateSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ports.ChangePasswordInput) (err error) {
	var username string
	defer func() { s.record(ctx, ports.AuthEventPasswordChange, username, userID, err) }()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	username = user.Username

	if err = user.ChangePassword(in.CurrentPassword, in.NewPassword, s.hasher); err != nil {
		return err
	}
	if err = s.users.Save(ctx, user); err != nil {
		return err
	}
	return s.uow.Commit(ctx)
}

func (s *AuthService) UpdateUsername(ctx context.Context, userID string, in ports.UpdateUsernameInput) (pub domain.PublicUser, err error) {
	defer func() { s.record(ctx, ports.AuthEventUsernameChange, in.Username, userID, err) }()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if user.Username == in.Username {
		return user.Public(), nil
	}

	_, err = s.users.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return domain.PublicUser{}, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return domain.PublicUser{}, err
	}

	if err = user.UpdateUsername(in.Username); err != nil {
		return domain.PublicUser{}, err
	}
	if err = s.users.Save(ctx, user); err != nil {
		return domain.PublicUser{}, err
	}
	if err = s.uow.Commit(ctx); err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

// CleanupExpiredSessions deletes every session that is already expired.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.authn.PurgeExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if err := s.uow.Commit(ctx); err != nil {
		return 0, err
	}

	metrics.SessionsSweptTotal.Add(float64(n))
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired sessions purged")
	}
	return n, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	issued, err := s.authn.CreateSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.uow.Commit(ctx); err != nil {
		return nil, err
	}

	if active, err := s.authn.ActiveSessions(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to count active sessions")
	} else {
		s.log.Info().Str("user_id", user.ID).Int("active_sessions", active).Msg("session opened")
	}

	return &ports.AuthResult{
		Session: issued.Session,
		Cookie:  issued.Cookie,
		User:    user.Public(),
	}, nil
}

// upgradeHash re-hashes a verified password stored under a legacy scheme.
// A hashing failure keeps the old hash; a storage failure is returned.
func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) error {
	r, ok := s.hasher.(rehasher)
	if !ok || !r.NeedsRehash(user.PasswordHash) {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash failed")
		return nil
	}
	user.PasswordHash = hash
	return s.users.Save(ctx, user)
}

func (s *AuthService) record(ctx context.Context, typ ports.AuthEventType, username, userID string, err error) {
	metrics.AuthEventsTotal.WithLabelValues(string(typ), metrics.Result(err)).Inc()

	if s.auditor == nil {
		return
	}

	event := ports.AuthEvent{
		Type:       typ,
		Username:   username,
		UserID:     userID,
		Success:    err == nil,
		OccurredAt: s.now().UTC(),
	}
	if err != nil {
		event.Reason = err.Error()
	}

	if auditErr := s.auditor.Record(ctx, event); auditErr != nil {
		s.log.Warn().Err(auditErr).Str("event", string(typ)).Msg("failed to record auth event")
	}
}

func userIDOf(res *ports.AuthResult) string {
	if res == nil {
		return ""
	}
	return res.User.ID
}

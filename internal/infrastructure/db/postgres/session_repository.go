package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/oops"

	"github.com/todoapp/todo-service/internal/core/domain"
)

// SessionRepository implements ports.SessionRepository on PostgreSQL.
type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, expires_at FROM session WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, oops.Code("SESSION_QUERY_FAILED").With("operation", "find session").Wrap(err)
	}
	return &s, nil
}

// FindWithUser left-joins the owner so a dangling session still resolves
// and the caller can tell it apart from an unknown one.
func (r *SessionRepository) FindWithUser(ctx context.Context, id string) (*domain.Session, *domain.User, error) {
	var (
		s                 domain.Session
		uid, uname, uhash pgtype.Text
	)
	err := r.db.QueryRow(ctx,
		`SELECT s.id, s.user_id, s.expires_at, u.id, u.username, u.password_hash
		 FROM session s
		 LEFT JOIN "user" u ON u.id = s.user_id
		 WHERE s.id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt, &uid, &uname, &uhash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, oops.Code("SESSION_QUERY_FAILED").With("operation", "find session with user").Wrap(err)
	}

	if !uid.Valid {
		return &s, nil, nil
	}
	return &s, &domain.User{ID: uid.String, Username: uname.String, PasswordHash: uhash.String}, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO session (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		s.ID, s.UserID, s.ExpiresAt)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").With("user_id", s.UserID).Wrap(err)
	}
	return nil
}

// Save persists the expiry; the owner of a session never changes.
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE session SET expires_at = $2 WHERE id = $1`,
		s.ID, s.ExpiresAt)
	if err != nil {
		return oops.Code("SESSION_SAVE_FAILED").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM session WHERE expires_at < $1`, before)
	if err != nil {
		return 0, oops.Code("SESSION_PURGE_FAILED").With("before", before).Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) CountActiveByUserID(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM session WHERE user_id = $1 AND expires_at > $2`,
		userID, now).Scan(&n)
	if err != nil {
		return 0, oops.Code("SESSION_QUERY_FAILED").With("user_id", userID).Wrap(err)
	}
	return n, nil
}

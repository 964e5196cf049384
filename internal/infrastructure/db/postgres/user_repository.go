package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/todoapp/todo-service/internal/core/domain"
)

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash FROM "user" WHERE id = $1`, id)
}

// FindByUsername matches the username exactly, case included.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash FROM "user" WHERE username = $1`, username)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO "user" (id, username, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Username, user.PasswordHash)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE "user" SET username = $2, password_hash = $3 WHERE id = $1`,
		user.ID, user.Username, user.PasswordHash)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return oops.Code("USER_SAVE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "find user").Wrap(err)
	}
	return &u, nil
}

package ports

import (
	"context"
	"time"

	"github.com/todoapp/todo-service/internal/core/domain"
)

// UserRepository persists accounts. Lookups that miss return domain.ErrUserNotFound.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create fails with domain.ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, user *domain.User) error
	Save(ctx context.Context, user *domain.User) error
}

// SessionRepository persists sessions. Lookups that miss return domain.ErrSessionNotFound.
type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	// FindWithUser loads the session and its owner in one query. The user is
	// nil when the owner row cannot be resolved.
	FindWithUser(ctx context.Context, id string) (*domain.Session, *domain.User, error)
	Create(ctx context.Context, session *domain.Session) error
	Save(ctx context.Context, session *domain.Session) error
	// DeleteExpired removes sessions whose expiry is before the given time
	// and returns how many rows were deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	CountActiveByUserID(ctx context.Context, userID string, now time.Time) (int, error)
}

// TodoRepository persists todos. Lookups that miss return domain.ErrTodoNotFound.
type TodoRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Todo, error)
	// FindByUserID returns the user's todos ordered by id.
	FindByUserID(ctx context.Context, userID string) ([]*domain.Todo, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	// Create assigns the storage id to todo.ID.
	Create(ctx context.Context, todo *domain.Todo) error
	Save(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, todo *domain.Todo) error
}

// UnitOfWork groups the writes staged by repositories during one call.
// Nothing is durable until Commit returns nil.
type UnitOfWork interface {
	Commit(ctx context.Context) error
}

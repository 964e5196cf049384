package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/todoapp/todo-service/internal/core/domain"
)

// TodoRepository implements ports.TodoRepository on PostgreSQL.
type TodoRepository struct {
	db DBTX
}

func NewTodoRepository(db DBTX) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	var t domain.Todo
	err := r.db.QueryRow(ctx,
		`SELECT id, content, completed, user_id FROM todo WHERE id = $1`, id).
		Scan(&t.ID, &t.Content, &t.Completed, &t.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTodoNotFound
	}
	if err != nil {
		return nil, oops.Code("TODO_QUERY_FAILED").With("todo_id", id).Wrap(err)
	}
	return &t, nil
}

func (r *TodoRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Todo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, content, completed, user_id FROM todo WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, oops.Code("TODO_QUERY_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	todos := make([]*domain.Todo, 0)
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Content, &t.Completed, &t.UserID); err != nil {
			return nil, oops.With("operation", "scan todo row").Wrap(err)
		}
		todos = append(todos, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate todos").Wrap(err)
	}
	return todos, nil
}

func (r *TodoRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM todo WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, oops.Code("TODO_QUERY_FAILED").With("user_id", userID).Wrap(err)
	}
	return n, nil
}

func (r *TodoRepository) Create(ctx context.Context, t *domain.Todo) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO todo (content, completed, user_id) VALUES ($1, $2, $3) RETURNING id`,
		t.Content, t.Completed, t.UserID).Scan(&t.ID)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return oops.Code("TODO_CREATE_FAILED").With("user_id", t.UserID).Wrap(err)
	}
	return nil
}

func (r *TodoRepository) Save(ctx context.Context, t *domain.Todo) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE todo SET content = $2, completed = $3 WHERE id = $1`,
		t.ID, t.Content, t.Completed)
	if err != nil {
		return oops.Code("TODO_SAVE_FAILED").With("todo_id", t.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, t *domain.Todo) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todo WHERE id = $1`, t.ID)
	if err != nil {
		return oops.Code("TODO_DELETE_FAILED").With("todo_id", t.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

package ports

import (
	"context"

	"github.com/todoapp/todo-service/internal/core/domain"
)

type CreateTodoInput struct {
	Content string
}

type ToggleTodoInput struct {
	TodoID int64
}

type DeleteTodoInput struct {
	TodoID int64
}

type UpdateTodoContentInput struct {
	TodoID  int64
	Content string
}

type BulkToggleInput struct {
	TodoIDs []int64
}

// TodoService defines the list use cases. Every mutation is checked against
// the requesting user's id.
type TodoService interface {
	CreateTodo(ctx context.Context, input CreateTodoInput, userID string) (*domain.Todo, error)
	ToggleTodo(ctx context.Context, input ToggleTodoInput, userID string) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, input DeleteTodoInput, userID string) error
	GetTodosForUser(ctx context.Context, userID string) ([]*domain.Todo, error)
	UpdateTodoContent(ctx context.Context, input UpdateTodoContentInput, userID string) (*domain.Todo, error)
	// BulkToggleTodos skips ids that are missing or not owned by userID and
	// returns only the todos it toggled.
	BulkToggleTodos(ctx context.Context, input BulkToggleInput, userID string) ([]*domain.Todo, error)
}

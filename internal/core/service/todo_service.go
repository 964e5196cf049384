package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
	"github.com/todoapp/todo-service/internal/pkg/metrics"
)

// TodoService implements the list use cases on top of the request's unit of work.
type TodoService struct {
	todos    ports.TodoRepository
	users    ports.UserRepository
	uow      ports.UnitOfWork
	maxTodos int
	log      zerolog.Logger
}

// NewTodoService wires the use cases. maxTodos <= 0 selects domain.DefaultMaxTodos.
func NewTodoService(todos ports.TodoRepository, users ports.UserRepository, uow ports.UnitOfWork, maxTodos int, log zerolog.Logger) *TodoService {
	if maxTodos <= 0 {
		maxTodos = domain.DefaultMaxTodos
	}
	return &TodoService{todos: todos, users: users, uow: uow, maxTodos: maxTodos, log: log}
}

func (s *TodoService) CreateTodo(ctx context.Context, in ports.CreateTodoInput, userID string) (todo *domain.Todo, err error) {
	defer func() { observe("create", err) }()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.todos.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !user.CanCreateTodo(count, s.maxTodos) {
		return nil, domain.ErrTodoLimitReached
	}

	todo, err = domain.NewTodo(in.Content, user.ID)
	if err != nil {
		return nil, err
	}
	if err = s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	if err = s.uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Debug().Int64("todo_id", todo.ID).Str("user_id", user.ID).Msg("todo created")
	return todo, nil
}

func (s *TodoService) ToggleTodo(ctx context.Context, in ports.ToggleTodoInput, userID string) (todo *domain.Todo, err error) {
	defer func() { observe("toggle", err) }()

	todo, err = s.todos.FindByID(ctx, in.TodoID)
	if err != nil {
		return nil, err
	}
	if err = todo.Toggle(userID); err != nil {
		return nil, err
	}
	if err = s.todos.Save(ctx, todo); err != nil {
		return nil, err
	}
	if err = s.uow.Commit(ctx); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, in ports.DeleteTodoInput, userID string) (err error) {
	defer func() { observe("delete", err) }()

	todo, err := s.todos.FindByID(ctx, in.TodoID)
	if err != nil {
		return err
	}
	if !todo.CanBeDeletedBy(userID) {
		return domain.NewAuthorizationError("you can only delete your own todos")
	}
	if err = s.todos.Delete(ctx, todo); err != nil {
		return err
	}
	return s.uow.Commit(ctx)
}

func (s *TodoService) GetTodosForUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	return s.todos.FindByUserID(ctx, userID)
}

func (s *TodoService) UpdateTodoContent(ctx context.Context, in ports.UpdateTodoContentInput, userID string) (todo *domain.Todo, err error) {
	defer func() { observe("update", err) }()

	todo, err = s.todos.FindByID(ctx, in.TodoID)
	if err != nil {
		return nil, err
	}
	if err = todo.UpdateContent(in.Content, userID); err != nil {
		return nil, err
	}
	if err = s.todos.Save(ctx, todo); err != nil {
		return nil, err
	}
	if err = s.uow.Commit(ctx); err != nil {
		return nil, err
	}
	return todo, nil
}

// BulkToggleTodos toggles every listed todo the user owns. Ids that do not
// resolve or belong to someone else are skipped; a repeated id counts once.
// Storage failures abort the batch.
func (s *TodoService) BulkToggleTodos(ctx context.Context, in ports.BulkToggleInput, userID string) (toggled []*domain.Todo, err error) {
	defer func() { observe("bulk_toggle", err) }()

	toggled = make([]*domain.Todo, 0, len(in.TodoIDs))
	seen := make(map[int64]struct{}, len(in.TodoIDs))

	for _, id := range in.TodoIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		todo, err := s.todos.FindByID(ctx, id)
		if err == nil {
			err = todo.Toggle(userID)
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAuthorization) {
			s.log.Debug().Err(err).Int64("todo_id", id).Str("user_id", userID).Msg("bulk toggle skipped todo")
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := s.todos.Save(ctx, todo); err != nil {
			return nil, err
		}
		toggled = append(toggled, todo)
	}

	if err = s.uow.Commit(ctx); err != nil {
		return nil, err
	}
	return toggled, nil
}

func observe(operation string, err error) {
	metrics.TodoOperationsTotal.WithLabelValues(operation, metrics.Result(err)).Inc()
}

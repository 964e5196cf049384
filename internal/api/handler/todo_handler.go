package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
)

// TodoHandler handles HTTP requests for the signed-in user's todo list.
type TodoHandler struct {
	runner ports.ScopeRunner
}

func NewTodoHandler(runner ports.ScopeRunner) *TodoHandler {
	return &TodoHandler{runner: runner}
}

// withUser resolves the session inside a fresh scope and hands the user id
// to fn on the same scope.
func (h *TodoHandler) withUser(c echo.Context, fn func(ctx context.Context, todos ports.TodoService, userID string) error) error {
	token, err := sessionToken(c)
	if err != nil {
		return err
	}

	return h.runner.WithScope(c.Request().Context(), func(ctx context.Context, s ports.Scope) error {
		userID, err := s.Auth().GetUserIDFromSession(ctx, token)
		if err != nil {
			return err
		}
		return fn(ctx, s.Todos(), userID)
	})
}

// List handles GET /todos.
//
// @Summary      List todos
// @Tags         todos
// @Produce      json
// @Success      200  {object}  todoListResponse
// @Failure      401  {object}  errorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	var todos []*domain.Todo
	err := h.withUser(c, func(ctx context.Context, svc ports.TodoService, userID string) error {
		var err error
		todos, err = svc.GetTodosForUser(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTodoListResponse(todos))
}

// Create handles POST /todos.
//
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      createTodoRequest  true  "Todo content"
// @Success      201   {object}  todoResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	var req createTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var todo *domain.Todo
	err := h.withUser(c, func(ctx context.Context, svc ports.TodoService, userID string) error {
		var err error
		todo, err = svc.CreateTodo(ctx, ports.CreateTodoInput{Content: req.Content}, userID)
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTodoResponse(todo))
}

// Toggle handles PATCH /todos/:id.
//
// @Summary      Toggle a todo
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo id"
// @Success      200  {object}  todoResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /todos/{id} [patch]
func (h *TodoHandler) Toggle(c echo.Context) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	var todo *domain.Todo
	err = h.withUser(c, func(ctx context.Context, svc ports.TodoService, userID string) error {
		var err error
		todo, err = svc.ToggleTodo(ctx, ports.ToggleTodoInput{TodoID: id}, userID)
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTodoResponse(todo))
}

// Update handles PUT /todos/:id.
//
// @Summary      Edit a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Todo id"
// @Param        body  body      updateTodoRequest  true  "New content"
// @Success      200   {object}  todoResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c echo.Context) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	var req updateTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var todo *domain.Todo
	err = h.withUser(c, func(ctx context.Context, svc ports.TodoService, userID string) error {
		var err error
		todo, err = svc.UpdateTodoContent(ctx, ports.UpdateTodoContentInput{TodoID: id, Content: req.Content}, userID)
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTodoResponse(todo))
}

// Delete handles DELETE /todos/:id.
//
// @Summary      Delete a todo
// @Tags         todos
// @Param        id   path  int  true  "Todo id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	err = h.withUser(c, func(ctx context.Context, svc ports.TodoService, userID string) error {
		return svc.DeleteTodo(ctx, ports.DeleteTodoInput{TodoID: id}, userID)
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// BulkToggle handles PATCH /todos/bulk. Ids that are missing or belong to
// another user are skipped.
//
// @Summary      Toggle several todos
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      bulkToggleRequest  true  "Todo ids"
// @Success      200   {object}  todoListResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /todos/bulk [patch]
func (h *TodoHandler) BulkToggle(c echo.Context) error {
	var req bulkToggleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var todos []*domain.Todo
	err := h.withUser(c, func(ctx context.Context, svc ports.TodoService, userID string) error {
		var err error
		todos, err = svc.BulkToggleTodos(ctx, ports.BulkToggleInput{TodoIDs: req.TodoIDs}, userID)
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTodoListResponse(todos))
}

func todoID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid todo id")
	}
	return id, nil
}

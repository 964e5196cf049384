package handler

import "github.com/todoapp/todo-service/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type signUpRequest struct {
	Username        string `json:"username"         validate:"required"`
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type signInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

type updateUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type createTodoRequest struct {
	Content string `json:"content" validate:"notblank"`
}

type updateTodoRequest struct {
	Content string `json:"content" validate:"notblank"`
}

type bulkToggleRequest struct {
	TodoIDs []int64 `json:"todo_ids" validate:"required,min=1,dive,gt=0"`
}

// Response-only types owned by the transport layer.

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type authResponse struct {
	User userResponse `json:"user"`
}

type todoResponse struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	Status    string `json:"status"`
}

type todoListResponse struct {
	Data  []todoResponse `json:"data"`
	Total int            `json:"total"`
}

func toUserResponse(u domain.PublicUser) userResponse {
	return userResponse{ID: u.ID, Username: u.Username}
}

func toTodoResponse(t *domain.Todo) todoResponse {
	return todoResponse{
		ID:        t.ID,
		Content:   t.Content,
		Completed: t.Completed,
		Status:    string(t.Status()),
	}
}

func toTodoListResponse(todos []*domain.Todo) todoListResponse {
	data := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		data = append(data, toTodoResponse(t))
	}
	return todoListResponse{Data: data, Total: len(data)}
}

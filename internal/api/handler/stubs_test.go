package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/todoapp/todo-service/internal/api/middleware"
	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
)

const testToken = "session-token-0123456789"

// stubAuthService implements ports.AuthService with overridable funcs.
type stubAuthService struct {
	signUpFn         func(ctx context.Context, in ports.SignUpInput) (*ports.AuthResult, error)
	signInFn         func(ctx context.Context, in ports.SignInInput) (*ports.AuthResult, error)
	signOutFn        func(ctx context.Context, sessionID string) error
	changePasswordFn func(ctx context.Context, userID string, in ports.ChangePasswordInput) error
	updateUsernameFn func(ctx context.Context, userID string, in ports.UpdateUsernameInput) (domain.PublicUser, error)

	// sessions maps tokens to user ids for GetUserIDFromSession.
	sessions map[string]string
}

func (s *stubAuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.AuthResult, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.AuthResult, error) {
	return s.signInFn(ctx, in)
}

func (s *stubAuthService) SignOut(ctx context.Context, sessionID string) error {
	if s.signOutFn == nil {
		return nil
	}
	return s.signOutFn(ctx, sessionID)
}

func (s *stubAuthService) GetUserIDFromSession(_ context.Context, sessionID string) (string, error) {
	userID, ok := s.sessions[sessionID]
	if !ok {
		return "", domain.ErrSessionInvalid
	}
	return userID, nil
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID string, in ports.ChangePasswordInput) error {
	return s.changePasswordFn(ctx, userID, in)
}

func (s *stubAuthService) UpdateUsername(ctx context.Context, userID string, in ports.UpdateUsernameInput) (domain.PublicUser, error) {
	return s.updateUsernameFn(ctx, userID, in)
}

func (s *stubAuthService) CleanupExpiredSessions(context.Context) (int64, error) {
	return 0, nil
}

// stubTodoService implements ports.TodoService with overridable funcs.
type stubTodoService struct {
	createFn func(ctx context.Context, in ports.CreateTodoInput, userID string) (*domain.Todo, error)
	toggleFn func(ctx context.Context, in ports.ToggleTodoInput, userID string) (*domain.Todo, error)
	deleteFn func(ctx context.Context, in ports.DeleteTodoInput, userID string) error
	listFn   func(ctx context.Context, userID string) ([]*domain.Todo, error)
	updateFn func(ctx context.Context, in ports.UpdateTodoContentInput, userID string) (*domain.Todo, error)
	bulkFn   func(ctx context.Context, in ports.BulkToggleInput, userID string) ([]*domain.Todo, error)
}

func (s *stubTodoService) CreateTodo(ctx context.Context, in ports.CreateTodoInput, userID string) (*domain.Todo, error) {
	return s.createFn(ctx, in, userID)
}

func (s *stubTodoService) ToggleTodo(ctx context.Context, in ports.ToggleTodoInput, userID string) (*domain.Todo, error) {
	return s.toggleFn(ctx, in, userID)
}

func (s *stubTodoService) DeleteTodo(ctx context.Context, in ports.DeleteTodoInput, userID string) error {
	return s.deleteFn(ctx, in, userID)
}

func (s *stubTodoService) GetTodosForUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	return s.listFn(ctx, userID)
}

func (s *stubTodoService) UpdateTodoContent(ctx context.Context, in ports.UpdateTodoContentInput, userID string) (*domain.Todo, error) {
	return s.updateFn(ctx, in, userID)
}

func (s *stubTodoService) BulkToggleTodos(ctx context.Context, in ports.BulkToggleInput, userID string) ([]*domain.Todo, error) {
	return s.bulkFn(ctx, in, userID)
}

// stubRunner implements both ports.ScopeRunner and ports.Scope and counts
// how many scopes were opened.
type stubRunner struct {
	auth   *stubAuthService
	todos  *stubTodoService
	scopes int
}

func (r *stubRunner) WithScope(ctx context.Context, fn func(ctx context.Context, s ports.Scope) error) error {
	r.scopes++
	return fn(ctx, r)
}

func (r *stubRunner) Auth() ports.AuthService  { return r.auth }
func (r *stubRunner) Todos() ports.TodoService { return r.todos }

func newRunner() *stubRunner {
	return &stubRunner{
		auth:  &stubAuthService{sessions: map[string]string{testToken: "alice-id"}},
		todos: &stubTodoService{},
	}
}

// newContext builds an echo context with the validator installed. A non-empty
// token is stored the way the session middleware does.
func newContext(method, target, body, token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if token != "" {
		c.Set(middleware.SessionTokenKey, token)
	}
	return c, rec
}

func sessionCookie(value string) domain.Cookie {
	return domain.Cookie{
		Name:  domain.DefaultSessionCookieName,
		Value: value,
		Attributes: domain.CookieAttributes{
			HTTPOnly: true,
			SameSite: domain.SameSiteLax,
			Path:     "/",
			MaxAge:   2592000,
		},
	}
}

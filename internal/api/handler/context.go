package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todoapp/todo-service/internal/api/middleware"
	"github.com/todoapp/todo-service/internal/core/domain"
)

// sessionToken returns the token stored by the SessionCookie middleware.
// An empty value means the middleware did not run, which is treated as an
// unauthenticated request rather than a server fault.
func sessionToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.SessionTokenKey).(string)
	if token == "" {
		return "", domain.ErrSessionInvalid
	}
	return token, nil
}

// bindAndValidate decodes the JSON body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

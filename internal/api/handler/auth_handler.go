package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/ports"
)

// AuthHandler handles HTTP requests for account and session operations.
type AuthHandler struct {
	runner       ports.ScopeRunner
	cookieName   string
	secureCookie bool
	log          zerolog.Logger
}

func NewAuthHandler(runner ports.ScopeRunner, cookieName string, secureCookie bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{runner: runner, cookieName: cookieName, secureCookie: secureCookie, log: log}
}

// SignUp creates a new account and opens a session for it.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var result *ports.AuthResult
	err := h.runner.WithScope(c.Request().Context(), func(ctx context.Context, s ports.Scope) error {
		var err error
		result, err = s.Auth().SignUp(ctx, ports.SignUpInput{Username: req.Username, Password: req.Password})
		return err
	})
	if err != nil {
		return err
	}

	c.SetCookie(toHTTPCookie(result.Cookie))
	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(result.User)})
}

// SignIn authenticates a user and opens a session.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var result *ports.AuthResult
	err := h.runner.WithScope(c.Request().Context(), func(ctx context.Context, s ports.Scope) error {
		var err error
		result, err = s.Auth().SignIn(ctx, ports.SignInInput{Username: req.Username, Password: req.Password})
		return err
	})
	if err != nil {
		return err
	}

	c.SetCookie(toHTTPCookie(result.Cookie))
	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(result.User)})
}

// SignOut ends the current session. It always succeeds and always clears the cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Router       /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if cookie, err := c.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		err := h.runner.WithScope(c.Request().Context(), func(ctx context.Context, s ports.Scope) error {
			return s.Auth().SignOut(ctx, cookie.Value)
		})
		if err != nil {
			h.log.Warn().Err(err).Msg("sign out failed")
		}
	}

	c.SetCookie(clearedCookie(h.cookieName, h.secureCookie))
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword replaces the signed-in user's password.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	token, err := sessionToken(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.runner.WithScope(c.Request().Context(), func(ctx context.Context, s ports.Scope) error {
		userID, err := s.Auth().GetUserIDFromSession(ctx, token)
		if err != nil {
			return err
		}
		return s.Auth().ChangePassword(ctx, userID, ports.ChangePasswordInput{
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateUsername renames the signed-in user.
//
// @Summary      Update username
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateUsernameRequest  true  "New username"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/username [put]
func (h *AuthHandler) UpdateUsername(c echo.Context) error {
	token, err := sessionToken(c)
	if err != nil {
		return err
	}

	var req updateUsernameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var user userResponse
	err = h.runner.WithScope(c.Request().Context(), func(ctx context.Context, s ports.Scope) error {
		userID, err := s.Auth().GetUserIDFromSession(ctx, token)
		if err != nil {
			return err
		}
		updated, err := s.Auth().UpdateUsername(ctx, userID, ports.UpdateUsernameInput{Username: req.Username})
		if err != nil {
			return err
		}
		user = toUserResponse(updated)
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: user})
}

package handler

import (
	"net/http"

	"github.com/todoapp/todo-service/internal/core/domain"
)

func toHTTPCookie(c domain.Cookie) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Attributes.Path,
		MaxAge:   c.Attributes.MaxAge,
		HttpOnly: c.Attributes.HTTPOnly,
		Secure:   c.Attributes.Secure,
		SameSite: toSameSite(c.Attributes.SameSite),
	}
}

// clearedCookie tells the browser to drop the session cookie.
func clearedCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func toSameSite(v string) http.SameSite {
	switch v {
	case domain.SameSiteStrict:
		return http.SameSiteStrictMode
	case domain.SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

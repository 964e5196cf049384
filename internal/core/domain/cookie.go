package domain

// DefaultSessionCookieName is the cookie that carries the raw session token.
const DefaultSessionCookieName = "session"

// SameSite values understood by the HTTP boundary.
const (
	SameSiteLax    = "lax"
	SameSiteStrict = "strict"
	SameSiteNone   = "none"
)

// CookieAttributes mirror the Set-Cookie attributes of a session credential.
type CookieAttributes struct {
	HTTPOnly bool
	Secure   bool
	SameSite string
	Path     string
	MaxAge   int // seconds
}

// Cookie is the transport representation of a session. It is never persisted.
type Cookie struct {
	Name       string
	Value      string
	Attributes CookieAttributes
}

package domain

import "time"

// DefaultSessionTTL is how long a freshly issued session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

// expiresSoonWindow is the remaining lifetime under which ExpiresSoon reports true.
const expiresSoonWindow = time.Hour

// Session is a bearer credential. The ID is the token itself.
//
// A session is Active while now < ExpiresAt and Expired afterwards. Sign-out
// moves ExpiresAt into the past instead of deleting the row.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession builds a session whose expiry must lie strictly after now.
func NewSession(id, userID string, expiresAt, now time.Time) (*Session, error) {
	if id == "" {
		return nil, NewValidationError("session id is required")
	}
	if userID == "" {
		return nil, NewValidationError("user id is required")
	}
	if !expiresAt.After(now) {
		return nil, NewValidationError("session expiration must be in the future")
	}
	return &Session{ID: id, UserID: userID, ExpiresAt: expiresAt}, nil
}

// IsValidAt reports whether the session is still active at t.
func (s *Session) IsValidAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}

func (s *Session) IsValid() bool {
	return s.IsValidAt(time.Now())
}

func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.IsValidAt(t)
}

// Expire tombstones the session one second before now.
func (s *Session) Expire(now time.Time) {
	s.ExpiresAt = now.Add(-time.Second)
}

// Extend slides the expiry to now+d.
func (s *Session) Extend(now time.Time, d time.Duration) {
	s.ExpiresAt = now.Add(d)
}

func (s *Session) BelongsTo(userID string) bool {
	return s.UserID == userID
}

// TimeUntilExpiration never returns a negative duration.
func (s *Session) TimeUntilExpiration(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (s *Session) ExpiresSoon(now time.Time) bool {
	return s.TimeUntilExpiration(now) <= expiresSoonWindow
}

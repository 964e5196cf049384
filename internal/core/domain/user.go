package domain

import "unicode/utf8"

const (
	UsernameMinLen = 3
	UsernameMaxLen = 31
	PasswordMinLen = 6
	PasswordMaxLen = 255

	// DefaultMaxTodos is the per-user item cap applied when none is configured.
	DefaultMaxTodos = 50
)

// PasswordHasher is the keyed hashing primitive users are built with.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// User models an account holder. PasswordHash is never the plaintext.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// PublicUser is the view of a user that may leave the service.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewUser validates the credentials and hashes the password.
func NewUser(id, username, password string, hasher PasswordHasher) (*User, error) {
	if id == "" {
		return nil, NewValidationError("user id is required")
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	return &User{ID: id, Username: username, PasswordHash: hash}, nil
}

// Authenticate returns ErrInvalidCredentials when password does not match.
func (u *User) Authenticate(password string, hasher PasswordHasher) error {
	if !hasher.Verify(password, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	return nil
}

func (u *User) UpdateUsername(username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	u.Username = username
	return nil
}

// ChangePassword re-verifies the current password before re-hashing.
func (u *User) ChangePassword(current, next string, hasher PasswordHasher) error {
	if err := u.Authenticate(current, hasher); err != nil {
		return err
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := hasher.Hash(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CanCreateTodo reports whether a user holding count todos may add another.
func (u *User) CanCreateTodo(count, limit int) bool {
	if limit <= 0 {
		limit = DefaultMaxTodos
	}
	return count < limit
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen || n > UsernameMaxLen {
		return NewValidationError("username must be between 3 and 31 characters")
	}
	return nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen || n > PasswordMaxLen {
		return NewValidationError("password must be between 6 and 255 characters")
	}
	return nil
}

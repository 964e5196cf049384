package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	TodoContentMinLen = 4
	TodoContentMaxLen = 500
)

type TodoStatus string

const (
	TodoStatusPending   TodoStatus = "pending"
	TodoStatusCompleted TodoStatus = "completed"
)

// Todo is a single list item. ID is zero until the store assigns one.
type Todo struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	UserID    string `json:"user_id"`
}

// NewTodo trims and validates content; new todos start incomplete.
func NewTodo(content, userID string) (*Todo, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("user id is required")
	}
	trimmed, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	return &Todo{Content: trimmed, UserID: userID}, nil
}

// Toggle flips Completed. Two calls restore the original state.
func (t *Todo) Toggle(requesterID string) error {
	if err := t.ensureOwnership(requesterID); err != nil {
		return err
	}
	t.Completed = !t.Completed
	return nil
}

func (t *Todo) UpdateContent(content, requesterID string) error {
	if err := t.ensureOwnership(requesterID); err != nil {
		return err
	}
	trimmed, err := normalizeContent(content)
	if err != nil {
		return err
	}
	t.Content = trimmed
	return nil
}

func (t *Todo) MarkCompleted(requesterID string) error {
	if err := t.ensureOwnership(requesterID); err != nil {
		return err
	}
	t.Completed = true
	return nil
}

func (t *Todo) MarkIncomplete(requesterID string) error {
	if err := t.ensureOwnership(requesterID); err != nil {
		return err
	}
	t.Completed = false
	return nil
}

func (t *Todo) CanBeDeletedBy(userID string) bool {
	return t.IsOwnedBy(userID)
}

func (t *Todo) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

func (t *Todo) Status() TodoStatus {
	if t.Completed {
		return TodoStatusCompleted
	}
	return TodoStatusPending
}

func (t *Todo) ensureOwnership(requesterID string) error {
	if !t.IsOwnedBy(requesterID) {
		return NewAuthorizationError("you can only modify your own todos")
	}
	return nil
}

func normalizeContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	n := utf8.RuneCountInString(trimmed)
	if n < TodoContentMinLen {
		return "", NewValidationError("todo must be at least 4 characters")
	}
	if n > TodoContentMaxLen {
		return "", NewValidationError("todo cannot exceed 500 characters")
	}
	return trimmed, nil
}

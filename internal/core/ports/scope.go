package ports

import "context"

// Scope is the bundle of services bound to one persistence context. It is
// valid only inside the ScopeRunner callback that produced it.
type Scope interface {
	Auth() AuthService
	Todos() TodoService
}

// ScopeRunner runs fn with a fresh Scope and releases the scope's
// persistence context before returning, whatever fn does.
type ScopeRunner interface {
	WithScope(ctx context.Context, fn func(ctx context.Context, s Scope) error) error
}

package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Hashers
// ---------------------------------------------------------------------------

// plainHasher is a reversible stand-in so tests do not pay for argon2.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Verify(p, h string) bool { return h == "hashed:"+p }

// upgradingHasher treats "legacy:" hashes as verifiable but outdated.
type upgradingHasher struct{ plainHasher }

func (upgradingHasher) Verify(p, h string) bool {
	return h == "hashed:"+p || h == "legacy:"+p
}

func (upgradingHasher) NeedsRehash(h string) bool { return strings.HasPrefix(h, "legacy:") }

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[string]*domain.User
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.byID {
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

type stubSessionRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Session
	users    *stubUserRepo
	findErr  error
	countErr error
}

func newStubSessionRepo(users *stubUserRepo) *stubSessionRepo {
	return &stubSessionRepo{byID: make(map[string]*domain.Session), users: users}
}

func (r *stubSessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) FindWithUser(ctx context.Context, id string) (*domain.Session, *domain.User, error) {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	u, ok := r.users.byID[s.UserID]
	if !ok {
		return s, nil, nil
	}
	return s, cloneUser(u), nil
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubSessionRepo) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if s.ExpiresAt.Before(before) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *stubSessionRepo) CountActiveByUserID(_ context.Context, userID string, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	n := 0
	for _, s := range r.byID {
		if s.UserID == userID && s.IsValidAt(now) {
			n++
		}
	}
	return n, nil
}

func (r *stubSessionRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type stubTodoRepo struct {
	byID   map[int64]*domain.Todo
	nextID int64
}

func newStubTodoRepo() *stubTodoRepo {
	return &stubTodoRepo{byID: make(map[int64]*domain.Todo)}
}

func cloneTodo(t *domain.Todo) *domain.Todo {
	clone := *t
	return &clone
}

func (r *stubTodoRepo) FindByID(_ context.Context, id int64) (*domain.Todo, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTodoNotFound
	}
	return cloneTodo(t), nil
}

func (r *stubTodoRepo) FindByUserID(_ context.Context, userID string) ([]*domain.Todo, error) {
	out := make([]*domain.Todo, 0)
	for _, t := range r.byID {
		if t.UserID == userID {
			out = append(out, cloneTodo(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubTodoRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	todos, _ := r.FindByUserID(ctx, userID)
	return len(todos), nil
}

func (r *stubTodoRepo) Create(_ context.Context, t *domain.Todo) error {
	r.nextID++
	t.ID = r.nextID
	r.byID[t.ID] = cloneTodo(t)
	return nil
}

func (r *stubTodoRepo) Save(_ context.Context, t *domain.Todo) error {
	if _, ok := r.byID[t.ID]; !ok {
		return domain.ErrTodoNotFound
	}
	r.byID[t.ID] = cloneTodo(t)
	return nil
}

func (r *stubTodoRepo) Delete(_ context.Context, t *domain.Todo) error {
	delete(r.byID, t.ID)
	return nil
}

// stubUoW counts commits.
type stubUoW struct {
	mu        sync.Mutex
	commits   int
	commitErr error
}

func (u *stubUoW) Commit(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.commitErr != nil {
		return u.commitErr
	}
	u.commits++
	return nil
}

func (u *stubUoW) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.commits
}

type stubAuditor struct {
	mu     sync.Mutex
	events []ports.AuthEvent
	err    error
}

func (a *stubAuditor) Record(_ context.Context, e ports.AuthEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return a.err
}

func (a *stubAuditor) last() ports.AuthEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}

// ---------------------------------------------------------------------------
// Fixture: one set of repositories shared by both services, as in a scope.
// ---------------------------------------------------------------------------

type fixture struct {
	users    *stubUserRepo
	sessions *stubSessionRepo
	todos    *stubTodoRepo
	uow      *stubUoW
	auditor  *stubAuditor

	authn   *AuthenticationService
	auth    *AuthService
	todoSvc *TodoService

	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, plainHasher{}, SessionOptions{}, 0)
}

func newFixtureWith(t *testing.T, hasher domain.PasswordHasher, opts SessionOptions, maxTodos int) *fixture {
	t.Helper()

	f := &fixture{
		users:   newStubUserRepo(),
		todos:   newStubTodoRepo(),
		uow:     &stubUoW{},
		auditor: &stubAuditor{},
		now:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.sessions = newStubSessionRepo(f.users)

	clock := func() time.Time { return f.now }

	f.authn = NewAuthenticationService(f.sessions, opts)
	f.authn.now = clock
	f.auth = NewAuthService(f.users, f.authn, f.uow, hasher, f.auditor, zerolog.Nop())
	f.auth.now = clock
	f.todoSvc = NewTodoService(f.todos, f.users, f.uow, maxTodos, zerolog.Nop())
	return f
}

func (f *fixture) Auth() ports.AuthService  { return f.auth }
func (f *fixture) Todos() ports.TodoService { return f.todoSvc }

func (f *fixture) signUp(t *testing.T, username string) *ports.AuthResult {
	t.Helper()
	res, err := f.auth.SignUp(context.Background(), ports.SignUpInput{Username: username, Password: "secret1"})
	if err != nil {
		t.Fatalf("sign up %s: %v", username, err)
	}
	return res
}

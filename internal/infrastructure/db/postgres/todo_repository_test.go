package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoapp/todo-service/internal/core/domain"
)

var todoColumns = []string{"id", "content", "completed", "user_id"}

func TestTodoRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT id, content, completed, user_id FROM todo WHERE id`).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(7), "buy milk", false, "u1"))

		got, err := NewTodoRepository(mock).FindByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, &domain.Todo{ID: 7, Content: "buy milk", UserID: "u1"}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT id, content, completed, user_id FROM todo WHERE id`).
			WithArgs(int64(8)).
			WillReturnRows(pgxmock.NewRows(todoColumns))

		_, err := NewTodoRepository(mock).FindByID(context.Background(), 8)
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTodoRepository_FindByUserID(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      []*domain.Todo
		errMsg    string
	}{
		{
			name: "ordered rows",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM todo WHERE user_id = \$1 ORDER BY id`).
					WithArgs("u1").
					WillReturnRows(pgxmock.NewRows(todoColumns).
						AddRow(int64(1), "buy milk", true, "u1").
						AddRow(int64(2), "walk dog", false, "u1"))
			},
			want: []*domain.Todo{
				{ID: 1, Content: "buy milk", Completed: true, UserID: "u1"},
				{ID: 2, Content: "walk dog", UserID: "u1"},
			},
		},
		{
			name: "no rows",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM todo WHERE user_id = \$1 ORDER BY id`).
					WithArgs("u1").
					WillReturnRows(pgxmock.NewRows(todoColumns))
			},
			want: []*domain.Todo{},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM todo WHERE user_id = \$1 ORDER BY id`).
					WithArgs("u1").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setupMock(mock)

			got, err := NewTodoRepository(mock).FindByUserID(context.Background(), "u1")
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTodoRepository_CountByUserID(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT count`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewTodoRepository(mock).CountByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_Create(t *testing.T) {
	t.Run("assigns id", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`INSERT INTO todo`).
			WithArgs("buy milk", false, "u1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		todo := &domain.Todo{Content: "buy milk", UserID: "u1"}
		require.NoError(t, NewTodoRepository(mock).Create(context.Background(), todo))
		assert.Equal(t, int64(42), todo.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner missing", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`INSERT INTO todo`).
			WithArgs("buy milk", false, "gone").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

		err := NewTodoRepository(mock).Create(context.Background(), &domain.Todo{Content: "buy milk", UserID: "gone"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTodoRepository_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	todo := &domain.Todo{ID: 7, Content: "buy bread", Completed: true, UserID: "u1"}

	mock := newMockPool(t)
	mock.ExpectExec(`UPDATE todo SET content`).
		WithArgs(int64(7), "buy bread", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM todo WHERE id`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM todo WHERE id`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewTodoRepository(mock)
	require.NoError(t, repo.Save(ctx, todo))
	require.NoError(t, repo.Delete(ctx, todo))
	assert.ErrorIs(t, repo.Delete(ctx, todo), domain.ErrTodoNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

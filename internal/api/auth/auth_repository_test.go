package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepoTest(t *testing.T) (*PostgresAuthRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresAuthRepo(mockPool, logger), mockPool
}

func TestPostgresAuthRepo_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the inserted row", func(t *testing.T) {
		repo, mockPool := setupRepoTest(t)
		id := uuid.New()
		created := time.Now()
		mockPool.ExpectQuery("INSERT INTO users").
			WithArgs("ada", "ada@example.com", "hash").
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "created_at"}).
				AddRow(id, "ada", "ada@example.com", created))

		user, err := repo.CreateUser(ctx, "ada", "ada@example.com", "hash")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "ada", user.Username)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrEmailTaken", func(t *testing.T) {
		repo, mockPool := setupRepoTest(t)
		mockPool.ExpectQuery("INSERT INTO users").
			WithArgs("ada", "ada@example.com", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.CreateUser(ctx, "ada", "ada@example.com", "hash")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestPostgresAuthRepo_GetUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("no rows maps to ErrInvalidCredentials", func(t *testing.T) {
		repo, mockPool := setupRepoTest(t)
		mockPool.ExpectQuery("SELECT id, username, email, password_hash, created_at FROM users").
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, _, err := repo.GetUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

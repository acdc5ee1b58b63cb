package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarningsRepository_GetLifetimeReceived(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &EarningsRepository{querier: mock, logger: logger}
	userID := uuid.New()

	query := `
		SELECT lifetime_received
		FROM user_earnings
		WHERE user_id = \$1
	`

	t.Run("existing row", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"lifetime_received"}).AddRow(int64(62500)))

		total, err := repo.GetLifetimeReceived(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, int64(62500), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row means zero", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID).WillReturnError(pgx.ErrNoRows)

		total, err := repo.GetLifetimeReceived(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("db down")
		mock.ExpectQuery(query).WithArgs(userID).WillReturnError(dbErr)

		_, err := repo.GetLifetimeReceived(ctx, userID)
		assert.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEarningsRepository_AddLifetimeReceived(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &EarningsRepository{querier: mock, logger: logger}
	userID := uuid.New()

	query := `
		INSERT INTO user_earnings \(user_id, lifetime_received, updated_at\)
		VALUES \(\$1, \$2, NOW\(\)\)
		ON CONFLICT \(user_id\)
		DO UPDATE SET lifetime_received = user_earnings.lifetime_received \+ \$2, updated_at = NOW\(\)
	`

	mock.ExpectExec(query).
		WithArgs(userID, int64(5000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.AddLifetimeReceived(ctx, userID, 5000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/platform/persistence/pgxtest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stateCols = []string{"cash", "paper", "ink", "firmware_version", "updated_at"}

func TestMachineRepository_GetAndLock(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &MachineRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()

	t.Run("get", func(t *testing.T) {
		mock.ExpectQuery(`SELECT cash, paper, ink, firmware_version, updated_at FROM machine_state WHERE id = 1$`).
			WillReturnRows(pgxmock.NewRows(stateCols).AddRow("10000.00", 20, 20, "v1.0", now))

		state, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "10000", state.Cash.String())
		assert.Equal(t, 20, state.Paper)
		assert.Equal(t, 20, state.Ink)
		assert.Equal(t, "v1.0", state.FirmwareVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock", func(t *testing.T) {
		mock.ExpectQuery(`FROM machine_state WHERE id = 1 FOR UPDATE`).
			WillReturnRows(pgxmock.NewRows(stateCols).AddRow("10000", 0, 3, "v1.0", now))

		state, err := repo.LockForUpdate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, state.Paper)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing singleton", func(t *testing.T) {
		mock.ExpectQuery(`FROM machine_state WHERE id = 1`).WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(ctx)
		assert.ErrorIs(t, err, machine.ErrStateMissing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("lock timeout")
		mock.ExpectQuery(`FOR UPDATE`).WillReturnError(dbErr)

		_, err := repo.LockForUpdate(ctx)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to lock machine state")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMachineRepository_AdjustCash(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &MachineRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE machine_state SET cash = cash \+ \$1, updated_at = NOW\(\) WHERE id = 1 RETURNING cash`

	mock.ExpectQuery(query).WithArgs(pgxtest.Decimal("-200")).
		WillReturnRows(pgxmock.NewRows([]string{"cash"}).AddRow("9800"))
	cash, err := repo.AdjustCash(ctx, dec("-200"))
	require.NoError(t, err)
	assert.Equal(t, "9800", cash.String())

	mock.ExpectQuery(query).WithArgs(pgxtest.Decimal("-20000")).
		WillReturnError(&pgconn.PgError{Code: "23514"})
	_, err = repo.AdjustCash(ctx, dec("-20000"))
	assert.ErrorIs(t, err, machine.ErrInsufficientMachineCash)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMachineRepository_ConsumeSupplies(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &MachineRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE machine_state SET paper = paper - \$1, ink = ink - \$2`

	mock.ExpectQuery(query).WithArgs(1, 0).
		WillReturnRows(pgxmock.NewRows(stateCols).AddRow("9800", 19, 0, "v1.0", time.Now()))
	state, err := repo.ConsumeSupplies(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 19, state.Paper)
	assert.Equal(t, 0, state.Ink)

	dbErr := errors.New("disk full")
	mock.ExpectQuery(query).WithArgs(1, 1).WillReturnError(dbErr)
	_, err = repo.ConsumeSupplies(ctx, 1, 1)
	assert.ErrorIs(t, err, dbErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMachineRepository_WithTx(t *testing.T) {
	repo := &MachineRepository{logger: slog.Default()}
	txRepo, ok := repo.WithTx(nil).(*MachineRepository)
	require.True(t, ok)
	assert.Nil(t, txRepo.querier)
}

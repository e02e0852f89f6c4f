package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPolicySnapshotRepository creates a GormPolicySnapshotRepository with a mocked SQL connection
func newMockPolicySnapshotRepository(t *testing.T) (*GormPolicySnapshotRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPolicySnapshotRepository(gormDB), mock, mockDB
}

func TestGormPolicySnapshotRepository_FindByLine(t *testing.T) {
	t.Run("finds snapshot for line", func(t *testing.T) {
		repo, mock, mockDB := newMockPolicySnapshotRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"line_id", "created_at",
			"policy_absorb_decor_total_krw", "extra_labor_sell_krw", "extra_labor_cost_krw",
			"sell_adjust_rate", "sell_adjust_krw", "round_unit_krw",
		}).AddRow(lineID, time.Now(),
			decimal.RequireFromString("15000"),
			decimal.RequireFromString("20000"),
			decimal.RequireFromString("12000"),
			decimal.RequireFromString("0.05"),
			decimal.RequireFromString("1000"),
			decimal.RequireFromString("100"))

		mock.ExpectQuery(`SELECT \* FROM "pricing_policy_snapshots" WHERE line_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(lineID, 1).
			WillReturnRows(rows)

		snapshot, err := repo.FindByLine(context.Background(), lineID)

		assert.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.True(t, decimal.RequireFromString("15000").Equal(snapshot.PolicyAbsorbDecorTotalKRW))
		assert.True(t, decimal.RequireFromString("20000").Equal(snapshot.ExtraLaborSellKRW))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for line without snapshot", func(t *testing.T) {
		repo, mock, mockDB := newMockPolicySnapshotRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "pricing_policy_snapshots" WHERE line_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(lineID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		snapshot, err := repo.FindByLine(context.Background(), lineID)

		assert.Error(t, err)
		assert.Nil(t, snapshot)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pharmanet/backend/internal/domain/shared"
)

func stockEntryColumns() []string {
	return []string{"id", "created_at", "updated_at", "version", "branch_id", "product_code", "quantity"}
}

func TestGormStockEntryRepository_FindByBranchAndProduct(t *testing.T) {
	t.Run("finds existing entry", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(gormDB)

		entryID := uuid.New()
		branchID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(stockEntryColumns()).
			AddRow(entryID, now, now, 1, branchID, "PARA-500", int64(20))

		mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE branch_id = \$1 AND product_code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(branchID, "PARA-500", 1).
			WillReturnRows(rows)

		entry, err := repo.FindByBranchAndProduct(context.Background(), branchID, "PARA-500")

		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, branchID, entry.BranchID)
		assert.Equal(t, int64(20), entry.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing entry means zero stock", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(gormDB)

		branchID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE branch_id = \$1 AND product_code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(branchID, "PARA-500", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		entry, err := repo.FindByBranchAndProduct(context.Background(), branchID, "PARA-500")

		assert.Nil(t, entry)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockEntryRepository_DeleteByBranchAndProduct(t *testing.T) {
	t.Run("deletes existing entry", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(gormDB)

		branchID := uuid.New()

		mock.ExpectExec(`DELETE FROM "stock_entries" WHERE branch_id = \$1 AND product_code = \$2`).
			WithArgs(branchID, "PARA-500").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteByBranchAndProduct(context.Background(), branchID, "PARA-500")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(gormDB)

		branchID := uuid.New()

		mock.ExpectExec(`DELETE FROM "stock_entries" WHERE branch_id = \$1 AND product_code = \$2`).
			WithArgs(branchID, "PARA-500").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteByBranchAndProduct(context.Background(), branchID, "PARA-500")

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

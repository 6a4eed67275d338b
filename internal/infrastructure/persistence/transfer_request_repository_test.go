package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/transfer"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

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

	return gormDB, mock, mockDB
}

func requestColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version",
		"requester_branch_id", "target_branch_id", "product_code",
		"requested_quantity", "issued_quantity", "status", "expires_at",
		"responded_at", "picked_up_at", "delivered_at",
		"driver_id", "issue_number", "receipt_number", "rejection_reason",
		"attempted_branch_ids", "inventory_status", "inventory_note",
		"archived_by_requester",
	}
}

func TestGormTransferRequestRepository_FindByID(t *testing.T) {
	t.Run("finds existing request", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransferRequestRepository(gormDB)

		requestID := uuid.New()
		requester := uuid.New()
		target := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(requestColumns()).AddRow(
			requestID, now, now, 1,
			requester, target, "PARA-500",
			int64(10), nil, "PENDING", now.Add(30*time.Minute),
			nil, nil, nil,
			nil, "", "", "",
			[]byte(`[]`), "", "",
			false,
		)

		mock.ExpectQuery(`SELECT \* FROM "transfer_requests" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(requestID, 1).
			WillReturnRows(rows)

		request, err := repo.FindByID(context.Background(), requestID)

		require.NoError(t, err)
		require.NotNil(t, request)
		assert.Equal(t, requestID, request.ID)
		assert.Equal(t, transfer.StatusPending, request.Status)
		assert.Equal(t, int64(10), request.RequestedQuantity)
		assert.Empty(t, request.AttemptedBranchIDs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing request", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransferRequestRepository(gormDB)

		requestID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "transfer_requests" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(requestID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		request, err := repo.FindByID(context.Background(), requestID)

		assert.Nil(t, request)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransferRequestRepository_SaveWithLock(t *testing.T) {
	newRequest := func(t *testing.T) *transfer.Request {
		t.Helper()
		r, err := transfer.NewRequest(uuid.New(), uuid.New(), "PARA-500", 10, 30*time.Minute)
		require.NoError(t, err)
		r.ClearDomainEvents()
		return r
	}

	t.Run("bumps version on success", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransferRequestRepository(gormDB)

		request := newRequest(t)
		originalVersion := request.Version

		mock.ExpectExec(`UPDATE "transfer_requests" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), request)

		require.NoError(t, err)
		assert.Equal(t, originalVersion+1, request.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version check fails", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransferRequestRepository(gormDB)

		request := newRequest(t)
		originalVersion := request.Version

		mock.ExpectExec(`UPDATE "transfer_requests" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), request)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, originalVersion, request.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransferRequestRepository_FindOverduePending(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormTransferRequestRepository(gormDB)

	requestID := uuid.New()
	now := time.Now()
	past := now.Add(-5 * time.Minute)

	rows := sqlmock.NewRows(requestColumns()).AddRow(
		requestID, past, past, 1,
		uuid.New(), uuid.New(), "AMOX-250",
		int64(4), nil, "PENDING", past,
		nil, nil, nil,
		nil, "", "", "",
		[]byte(`[]`), "", "",
		false,
	)

	// Strict < keeps a request at exactly its deadline out of the sweep
	mock.ExpectQuery(`SELECT \* FROM "transfer_requests" WHERE status = \$1 AND expires_at < \$2 ORDER BY expires_at ASC`).
		WithArgs("PENDING", sqlmock.AnyArg()).
		WillReturnRows(rows)

	overdue, err := repo.FindOverduePending(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, requestID, overdue[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTransferRequestRepository_HasActiveRequest(t *testing.T) {
	t.Run("true when an active request exists", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransferRequestRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "transfer_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		active, err := repo.HasActiveRequest(context.Background(), uuid.New(), uuid.New(), "PARA-500")

		require.NoError(t, err)
		assert.True(t, active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("false when no active request exists", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransferRequestRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "transfer_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		active, err := repo.HasActiveRequest(context.Background(), uuid.New(), uuid.New(), "PARA-500")

		require.NoError(t, err)
		assert.False(t, active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransferRequestRepository_CountByStatus(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormTransferRequestRepository(gormDB)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("PENDING", 3).
		AddRow("COMPLETED", 7)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "transfer_requests" GROUP BY .*`).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[transfer.StatusPending])
	assert.Equal(t, int64(7), counts[transfer.StatusCompleted])
	assert.NoError(t, mock.ExpectationsWereMet())
}

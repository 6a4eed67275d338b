package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/transfer"
)

func newExpirationFixture(t *testing.T) (*fixture, *ExpirationService) {
	t.Helper()
	f := newFixture(t)
	svc := NewExpirationService(f.requests, f.stocks, f.bus, zap.NewNop())
	return f, svc
}

func makeOverdue(t *testing.T, f *fixture, request *transfer.Request) {
	t.Helper()
	request.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, f.requests.Save(context.Background(), request))
}

func TestExpirationService_ExpireOverdue(t *testing.T) {
	ctx := context.Background()

	t.Run("no overdue requests is a clean no-op", func(t *testing.T) {
		_, svc := newExpirationFixture(t)

		stats, err := svc.ExpireOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalOverdue)
		assert.Equal(t, 0, stats.SuccessExpired)
	})

	t.Run("expires overdue requests and releases the reservation", func(t *testing.T) {
		f, svc := newExpirationFixture(t)
		f.stocks.set(t, f.near.ID, "1001", 20)
		request := f.createOne(t, "1001", 8)
		makeOverdue(t, f, request)

		stats, err := svc.ExpireOverdue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, stats.TotalOverdue)
		assert.Equal(t, 1, stats.SuccessExpired)
		stored, err := f.requests.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, transfer.StatusExpired, stored.Status)
		assert.Equal(t, int64(20), f.stocks.quantity(f.near.ID, "1001"))
		assert.Contains(t, f.bus.eventTypes(), "transfer.request_expired")
	})

	t.Run("leaves requests inside the window alone", func(t *testing.T) {
		f, svc := newExpirationFixture(t)
		f.stocks.set(t, f.near.ID, "1001", 20)
		request := f.createOne(t, "1001", 8)

		stats, err := svc.ExpireOverdue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 0, stats.TotalOverdue)
		assert.Equal(t, transfer.StatusPending, request.Status)
		assert.Equal(t, int64(12), f.stocks.quantity(f.near.ID, "1001"))
	})

	t.Run("a raced request is skipped without releasing stock twice", func(t *testing.T) {
		f, svc := newExpirationFixture(t)
		f.stocks.set(t, f.near.ID, "1001", 20)
		request := f.createOne(t, "1001", 8)
		makeOverdue(t, f, request)
		f.requests.lockConflict = true

		stats, err := svc.ExpireOverdue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, stats.TotalOverdue)
		assert.Equal(t, 0, stats.SuccessExpired)
		assert.Equal(t, 1, stats.SkippedRaced)
		assert.Equal(t, int64(12), f.stocks.quantity(f.near.ID, "1001"))
	})

	t.Run("a sweep over a donor already approved skips it", func(t *testing.T) {
		f, svc := newExpirationFixture(t)
		f.stocks.set(t, f.near.ID, "1001", 20)
		request := f.createOne(t, "1001", 8)
		require.NoError(t, f.service.Approve(ctx, request.ID, "ISS-900", 8))
		makeOverdue(t, f, request)

		stats, err := svc.ExpireOverdue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 0, stats.TotalOverdue)
		assert.Equal(t, transfer.StatusDistribution, request.Status)
		assert.Equal(t, int64(12), f.stocks.quantity(f.near.ID, "1001"))
	})
}

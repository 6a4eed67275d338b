package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(t *testing.T, quantity int64) *StockEntry {
	t.Helper()
	entry, err := NewStockEntry(uuid.New(), "1001", quantity)
	require.NoError(t, err)
	entry.ClearDomainEvents()
	return entry
}

func TestNewStockEntry(t *testing.T) {
	t.Run("creates entry", func(t *testing.T) {
		branchID := uuid.New()
		entry, err := NewStockEntry(branchID, "1001", 20)
		require.NoError(t, err)

		assert.Equal(t, branchID, entry.BranchID)
		assert.Equal(t, "1001", entry.ProductCode)
		assert.Equal(t, int64(20), entry.Quantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewStockEntry(uuid.New(), "1001", -1)
		assert.Error(t, err)
	})

	t.Run("rejects empty product code", func(t *testing.T) {
		_, err := NewStockEntry(uuid.New(), "", 5)
		assert.Error(t, err)
	})

	t.Run("rejects nil branch", func(t *testing.T) {
		_, err := NewStockEntry(uuid.Nil, "1001", 5)
		assert.Error(t, err)
	})
}

func TestStockEntry_Adjust(t *testing.T) {
	t.Run("applies positive delta", func(t *testing.T) {
		entry := newTestEntry(t, 10)
		applied := entry.Adjust(5)
		assert.Equal(t, int64(5), applied)
		assert.Equal(t, int64(15), entry.Quantity)
	})

	t.Run("applies negative delta", func(t *testing.T) {
		entry := newTestEntry(t, 10)
		applied := entry.Adjust(-4)
		assert.Equal(t, int64(-4), applied)
		assert.Equal(t, int64(6), entry.Quantity)
	})

	t.Run("clamps at zero instead of going negative", func(t *testing.T) {
		entry := newTestEntry(t, 10)
		applied := entry.Adjust(-15)
		assert.Equal(t, int64(-10), applied)
		assert.Equal(t, int64(0), entry.Quantity)
	})

	t.Run("emits adjustment event with requested and applied", func(t *testing.T) {
		entry := newTestEntry(t, 3)
		entry.Adjust(-5)

		events := entry.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*StockAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(-5), event.Requested)
		assert.Equal(t, int64(-3), event.Applied)
		assert.Equal(t, int64(0), event.NewQuantity)
	})
}

func TestStockEntry_WasClamped(t *testing.T) {
	entry := newTestEntry(t, 10)
	assert.False(t, entry.WasClamped(-10))
	assert.True(t, entry.WasClamped(-11))
	assert.False(t, entry.WasClamped(5))
}

func TestStockEntry_Set(t *testing.T) {
	entry := newTestEntry(t, 10)

	require.NoError(t, entry.Set(42))
	assert.Equal(t, int64(42), entry.Quantity)

	assert.Error(t, entry.Set(-1))
	assert.Equal(t, int64(42), entry.Quantity)
}

func TestStockEntry_CanFulfill(t *testing.T) {
	entry := newTestEntry(t, 10)
	assert.True(t, entry.CanFulfill(10))
	assert.True(t, entry.CanFulfill(1))
	assert.False(t, entry.CanFulfill(11))
}

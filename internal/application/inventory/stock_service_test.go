package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/inventory"
	"github.com/pharmanet/backend/internal/domain/shared"
)

type fakeStockRepo struct {
	entries map[string]*inventory.StockEntry
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{entries: map[string]*inventory.StockEntry{}}
}

func stockKey(branchID uuid.UUID, productCode string) string {
	return branchID.String() + "/" + productCode
}

func (r *fakeStockRepo) seed(t *testing.T, branchID uuid.UUID, productCode string, qty int64) {
	t.Helper()
	entry, err := inventory.NewStockEntry(branchID, productCode, qty)
	require.NoError(t, err)
	entry.ClearDomainEvents()
	r.entries[stockKey(branchID, productCode)] = entry
}

func (r *fakeStockRepo) quantity(branchID uuid.UUID, productCode string) int64 {
	entry, ok := r.entries[stockKey(branchID, productCode)]
	if !ok {
		return 0
	}
	return entry.Quantity
}

func (r *fakeStockRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockRepo) FindByBranchAndProduct(_ context.Context, branchID uuid.UUID, productCode string) (*inventory.StockEntry, error) {
	entry, ok := r.entries[stockKey(branchID, productCode)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return entry, nil
}

func (r *fakeStockRepo) FindByBranch(_ context.Context, branchID uuid.UUID, _ shared.Filter) ([]inventory.StockEntry, error) {
	var out []inventory.StockEntry
	for _, e := range r.entries {
		if e.BranchID == branchID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindByProduct(_ context.Context, productCode string) ([]inventory.StockEntry, error) {
	var out []inventory.StockEntry
	for _, e := range r.entries {
		if e.ProductCode == productCode {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockEntry, error) {
	out := make([]inventory.StockEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeStockRepo) Save(_ context.Context, entry *inventory.StockEntry) error {
	r.entries[stockKey(entry.BranchID, entry.ProductCode)] = entry
	return nil
}

func (r *fakeStockRepo) DeleteByBranchAndProduct(_ context.Context, branchID uuid.UUID, productCode string) error {
	delete(r.entries, stockKey(branchID, productCode))
	return nil
}

func (r *fakeStockRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.entries)), nil
}

func TestStockService_GetQuantity(t *testing.T) {
	branchID := uuid.New()
	repo := newFakeStockRepo()
	repo.seed(t, branchID, "PARA-500", 120)
	service := NewStockService(repo, nil, zap.NewNop())

	t.Run("existing entry", func(t *testing.T) {
		qty, err := service.GetQuantity(context.Background(), branchID, "PARA-500")
		require.NoError(t, err)
		assert.Equal(t, int64(120), qty)
	})

	t.Run("missing entry reads as zero", func(t *testing.T) {
		qty, err := service.GetQuantity(context.Background(), branchID, "IBU-200")
		require.NoError(t, err)
		assert.Equal(t, int64(0), qty)
	})
}

func TestStockService_AdjustQuantity(t *testing.T) {
	branchID := uuid.New()

	t.Run("applies delta", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.seed(t, branchID, "PARA-500", 50)
		service := NewStockService(repo, nil, zap.NewNop())

		applied, err := service.AdjustQuantity(context.Background(), branchID, "PARA-500", -20)
		require.NoError(t, err)
		assert.Equal(t, int64(-20), applied)
		assert.Equal(t, int64(30), repo.quantity(branchID, "PARA-500"))
	})

	t.Run("clamps at zero", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.seed(t, branchID, "PARA-500", 10)
		service := NewStockService(repo, nil, zap.NewNop())

		applied, err := service.AdjustQuantity(context.Background(), branchID, "PARA-500", -25)
		require.NoError(t, err)
		assert.Equal(t, int64(-10), applied)
		assert.Equal(t, int64(0), repo.quantity(branchID, "PARA-500"))
	})

	t.Run("creates entry on first positive delta", func(t *testing.T) {
		repo := newFakeStockRepo()
		service := NewStockService(repo, nil, zap.NewNop())

		applied, err := service.AdjustQuantity(context.Background(), branchID, "IBU-200", 35)
		require.NoError(t, err)
		assert.Equal(t, int64(35), applied)
		assert.Equal(t, int64(35), repo.quantity(branchID, "IBU-200"))
	})
}

func TestStockService_ImportStocks(t *testing.T) {
	branchID := uuid.New()

	t.Run("replace overwrites", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.seed(t, branchID, "PARA-500", 50)
		service := NewStockService(repo, nil, zap.NewNop())

		stats, err := service.ImportStocks(context.Background(), []StockImportLine{
			{BranchID: branchID, ProductCode: "PARA-500", Quantity: 10},
			{BranchID: branchID, ProductCode: "IBU-200", Quantity: 70},
		}, ImportModeReplace)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 2, stats.Applied)
		assert.Equal(t, 0, stats.Rejected)
		assert.Equal(t, int64(10), repo.quantity(branchID, "PARA-500"))
		assert.Equal(t, int64(70), repo.quantity(branchID, "IBU-200"))
	})

	t.Run("merge adds", func(t *testing.T) {
		repo := newFakeStockRepo()
		repo.seed(t, branchID, "PARA-500", 50)
		service := NewStockService(repo, nil, zap.NewNop())

		stats, err := service.ImportStocks(context.Background(), []StockImportLine{
			{BranchID: branchID, ProductCode: "PARA-500", Quantity: 10},
		}, ImportModeMerge)
		require.NoError(t, err)

		assert.Equal(t, 1, stats.Applied)
		assert.Equal(t, int64(60), repo.quantity(branchID, "PARA-500"))
	})

	t.Run("invalid rows are skipped", func(t *testing.T) {
		repo := newFakeStockRepo()
		service := NewStockService(repo, nil, zap.NewNop())

		stats, err := service.ImportStocks(context.Background(), []StockImportLine{
			{BranchID: uuid.Nil, ProductCode: "PARA-500", Quantity: 10},
			{BranchID: branchID, ProductCode: "", Quantity: 10},
			{BranchID: branchID, ProductCode: "PARA-500", Quantity: -1},
			{BranchID: branchID, ProductCode: "PARA-500", Quantity: 10},
		}, ImportModeReplace)
		require.NoError(t, err)

		assert.Equal(t, 4, stats.Total)
		assert.Equal(t, 1, stats.Applied)
		assert.Equal(t, 3, stats.Rejected)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		repo := newFakeStockRepo()
		service := NewStockService(repo, nil, zap.NewNop())

		_, err := service.ImportStocks(context.Background(), []StockImportLine{
			{BranchID: branchID, ProductCode: "PARA-500", Quantity: 10},
		}, ImportMode("append"))
		require.Error(t, err)
	})
}

package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/catalog"
	"github.com/pharmanet/backend/internal/domain/inventory"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBranchRepo serves branches from memory in insertion order
type fakeBranchRepo struct {
	branches []catalog.Branch
}

func (f *fakeBranchRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Branch, error) {
	for i := range f.branches {
		if f.branches[i].ID == id {
			return &f.branches[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeBranchRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Branch, error) {
	return f.branches, nil
}

func (f *fakeBranchRepo) Save(_ context.Context, b *catalog.Branch) error {
	f.branches = append(f.branches, *b)
	return nil
}

func (f *fakeBranchRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeBranchRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(f.branches)), nil
}

// fakeStockRepo serves stock quantities from a map
type fakeStockRepo struct {
	quantities map[string]int64 // branchID|productCode -> quantity
}

func stockKey(branchID uuid.UUID, productCode string) string {
	return branchID.String() + "|" + productCode
}

func (f *fakeStockRepo) FindByBranchAndProduct(_ context.Context, branchID uuid.UUID, productCode string) (*inventory.StockEntry, error) {
	qty, ok := f.quantities[stockKey(branchID, productCode)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	entry, err := inventory.NewStockEntry(branchID, productCode, qty)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (f *fakeStockRepo) FindByID(_ context.Context, _ uuid.UUID) (*inventory.StockEntry, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeStockRepo) FindByBranch(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]inventory.StockEntry, error) {
	return nil, nil
}

func (f *fakeStockRepo) FindByProduct(_ context.Context, _ string) ([]inventory.StockEntry, error) {
	return nil, nil
}

func (f *fakeStockRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockEntry, error) {
	return nil, nil
}

func (f *fakeStockRepo) Save(_ context.Context, _ *inventory.StockEntry) error { return nil }

func (f *fakeStockRepo) DeleteByBranchAndProduct(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (f *fakeStockRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

// fakeRequestRepo tracks active donor pairs
type fakeRequestRepo struct {
	activePairs map[string]bool // requester|target|product -> active
}

func pairKey(requester, target uuid.UUID, productCode string) string {
	return requester.String() + "|" + target.String() + "|" + productCode
}

func (f *fakeRequestRepo) HasActiveRequest(_ context.Context, requester, target uuid.UUID, productCode string) (bool, error) {
	return f.activePairs[pairKey(requester, target, productCode)], nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, _ uuid.UUID) (*Request, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeRequestRepo) FindAll(_ context.Context, _ shared.Filter) ([]Request, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindByRequester(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]Request, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindByTarget(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]Request, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindByDriver(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]Request, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindByStatus(_ context.Context, _ []Status, _ shared.Filter) ([]Request, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindOverduePending(_ context.Context, _ time.Time) ([]Request, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindPendingAudit(_ context.Context, _ shared.Filter) ([]Request, error) {
	return nil, nil
}

func (f *fakeRequestRepo) Save(_ context.Context, _ *Request) error         { return nil }
func (f *fakeRequestRepo) SaveWithLock(_ context.Context, _ *Request) error { return nil }
func (f *fakeRequestRepo) Delete(_ context.Context, _ uuid.UUID) error      { return nil }

func (f *fakeRequestRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

func (f *fakeRequestRepo) CountByStatus(_ context.Context) (map[Status]int64, error) {
	return nil, nil
}

func newTestBranch(t *testing.T, name string, lat, lng float64) catalog.Branch {
	t.Helper()
	b, err := catalog.NewBranch(name, "Alexandria", valueobject.NewLocation(lat, lng))
	require.NoError(t, err)
	return *b
}

func TestBranchResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	requester := newTestBranch(t, "Janaklees", 31.2000, 29.9200)
	near := newTestBranch(t, "Syria St", 31.2050, 29.9250)   // ~750m away
	far := newTestBranch(t, "Fleming", 31.2500, 29.9800)     // ~7.8km away
	farther := newTestBranch(t, "Roushdy", 31.3000, 30.0500) // ~17km away

	setup := func() (*fakeBranchRepo, *fakeStockRepo, *fakeRequestRepo) {
		branches := &fakeBranchRepo{branches: []catalog.Branch{requester, far, near, farther}}
		stocks := &fakeStockRepo{quantities: map[string]int64{
			stockKey(near.ID, "1001"):    20,
			stockKey(far.ID, "1001"):     20,
			stockKey(farther.ID, "1001"): 20,
		}}
		requests := &fakeRequestRepo{activePairs: map[string]bool{}}
		return branches, stocks, requests
	}

	t.Run("selects the nearest branch with sufficient stock", func(t *testing.T) {
		resolver := NewBranchResolver(newRepos(setup()))

		donor, err := resolver.Resolve(ctx, requester.ID, "1001", 10, nil)
		require.NoError(t, err)
		assert.Equal(t, near.ID, donor.ID)
	})

	t.Run("never returns the requester", func(t *testing.T) {
		branches, stocks, requests := setup()
		stocks.quantities[stockKey(requester.ID, "1001")] = 100
		resolver := NewBranchResolver(branches, stocks, requests)

		donor, err := resolver.Resolve(ctx, requester.ID, "1001", 10, nil)
		require.NoError(t, err)
		assert.NotEqual(t, requester.ID, donor.ID)
	})

	t.Run("skips branches in the tried list", func(t *testing.T) {
		resolver := NewBranchResolver(newRepos(setup()))

		donor, err := resolver.Resolve(ctx, requester.ID, "1001", 10, []uuid.UUID{near.ID})
		require.NoError(t, err)
		assert.Equal(t, far.ID, donor.ID)
	})

	t.Run("skips branches with insufficient stock", func(t *testing.T) {
		branches, stocks, requests := setup()
		stocks.quantities[stockKey(near.ID, "1001")] = 9
		resolver := NewBranchResolver(branches, stocks, requests)

		donor, err := resolver.Resolve(ctx, requester.ID, "1001", 10, nil)
		require.NoError(t, err)
		assert.Equal(t, far.ID, donor.ID)
	})

	t.Run("does not attempt partial fulfillment", func(t *testing.T) {
		branches, stocks, requests := setup()
		stocks.quantities = map[string]int64{
			stockKey(near.ID, "1001"): 6,
			stockKey(far.ID, "1001"):  6,
		}
		resolver := NewBranchResolver(branches, stocks, requests)

		_, err := resolver.Resolve(ctx, requester.ID, "1001", 10, nil)
		assert.ErrorIs(t, err, shared.ErrNoEligibleDonor)
	})

	t.Run("skips branches with an active request for the same product", func(t *testing.T) {
		branches, stocks, requests := setup()
		requests.activePairs[pairKey(requester.ID, near.ID, "1001")] = true
		resolver := NewBranchResolver(branches, stocks, requests)

		donor, err := resolver.Resolve(ctx, requester.ID, "1001", 10, nil)
		require.NoError(t, err)
		assert.Equal(t, far.ID, donor.ID)
	})

	t.Run("missing stock entry means zero stock", func(t *testing.T) {
		branches, stocks, requests := setup()
		delete(stocks.quantities, stockKey(near.ID, "1001"))
		resolver := NewBranchResolver(branches, stocks, requests)

		donor, err := resolver.Resolve(ctx, requester.ID, "1001", 10, nil)
		require.NoError(t, err)
		assert.Equal(t, far.ID, donor.ID)
	})

	t.Run("no eligible donor anywhere", func(t *testing.T) {
		branches, stocks, requests := setup()
		resolver := NewBranchResolver(branches, stocks, requests)

		_, err := resolver.Resolve(ctx, requester.ID, "9999", 5, nil)
		assert.ErrorIs(t, err, shared.ErrNoEligibleDonor)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		resolver := NewBranchResolver(newRepos(setup()))
		_, err := resolver.Resolve(ctx, requester.ID, "1001", 0, nil)
		assert.Error(t, err)
	})

	t.Run("unknown requester", func(t *testing.T) {
		resolver := NewBranchResolver(newRepos(setup()))
		_, err := resolver.Resolve(ctx, uuid.New(), "1001", 10, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// newRepos adapts the setup tuple to the resolver constructor
func newRepos(b *fakeBranchRepo, s *fakeStockRepo, r *fakeRequestRepo) (catalog.BranchRepository, inventory.StockEntryRepository, RequestRepository) {
	return b, s, r
}

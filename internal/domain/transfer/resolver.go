package transfer

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/catalog"
	"github.com/pharmanet/backend/internal/domain/inventory"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// BranchResolver selects the donor branch for one line item: the nearest
// branch that can cover the full requested quantity and is not otherwise
// excluded. Partial fulfillment across donors is not attempted.
type BranchResolver struct {
	branchRepo  catalog.BranchRepository
	stockRepo   inventory.StockEntryRepository
	requestRepo RequestRepository
}

// NewBranchResolver creates a new BranchResolver
func NewBranchResolver(
	branchRepo catalog.BranchRepository,
	stockRepo inventory.StockEntryRepository,
	requestRepo RequestRepository,
) *BranchResolver {
	return &BranchResolver{
		branchRepo:  branchRepo,
		stockRepo:   stockRepo,
		requestRepo: requestRepo,
	}
}

// Resolve returns the nearest eligible donor for the requester-product-quantity
// triple. Excluded: the requester itself, branches in the tried list,
// branches the requester already has an active request with for this
// product, and branches holding less than the full quantity. Returns
// shared.ErrNoEligibleDonor when no branch qualifies; the caller records a
// shortage report instead of creating a request.
func (s *BranchResolver) Resolve(ctx context.Context, requesterBranchID uuid.UUID, productCode string, quantity int64, tried []uuid.UUID) (*catalog.Branch, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	requester, err := s.branchRepo.FindByID(ctx, requesterBranchID)
	if err != nil {
		return nil, err
	}

	branches, err := s.branchRepo.FindAll(ctx, shared.Filter{OrderBy: "created_at", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}

	triedSet := make(map[uuid.UUID]struct{}, len(tried))
	for _, id := range tried {
		triedSet[id] = struct{}{}
	}

	candidates := make([]catalog.Branch, 0, len(branches))
	for i := range branches {
		candidate := branches[i]
		if candidate.ID == requesterBranchID {
			continue
		}
		if _, wasTried := triedSet[candidate.ID]; wasTried {
			continue
		}

		active, err := s.requestRepo.HasActiveRequest(ctx, requesterBranchID, candidate.ID, productCode)
		if err != nil {
			return nil, err
		}
		if active {
			continue
		}

		available, err := s.availableQuantity(ctx, candidate.ID, productCode)
		if err != nil {
			return nil, err
		}
		if available < quantity {
			continue
		}

		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return nil, shared.ErrNoEligibleDonor
	}

	// Stable sort keeps a deterministic order for (statistically
	// negligible) distance ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return requester.DistanceKmTo(&candidates[i]) < requester.DistanceKmTo(&candidates[j])
	})

	return &candidates[0], nil
}

// availableQuantity reads the donor's stock, treating a missing entry as zero
func (s *BranchResolver) availableQuantity(ctx context.Context, branchID uuid.UUID, productCode string) (int64, error) {
	entry, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return entry.Quantity, nil
}

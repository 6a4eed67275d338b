package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/inventory"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// StockView is the read projection of one branch-product stock entry
type StockView struct {
	BranchID    uuid.UUID `json:"branch_id"`
	ProductCode string    `json:"product_code"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   int64     `json:"updated_at"`
}

func newStockView(e *inventory.StockEntry) StockView {
	return StockView{
		BranchID:    e.BranchID,
		ProductCode: e.ProductCode,
		Quantity:    e.Quantity,
		UpdatedAt:   e.UpdatedAt.UnixMilli(),
	}
}

// StockService manages the per-branch stock ledger outside the transfer
// flow: admin overwrites, manual adjustments and read access
type StockService struct {
	stockRepo inventory.StockEntryRepository
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	stockRepo inventory.StockEntryRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		stockRepo: stockRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// GetQuantity returns the on-hand quantity for a branch-product pair.
// A missing entry reads as zero.
func (s *StockService) GetQuantity(ctx context.Context, branchID uuid.UUID, productCode string) (int64, error) {
	entry, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return entry.Quantity, nil
}

// ListByBranch returns all stock entries for a branch
func (s *StockService) ListByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]StockView, error) {
	entries, err := s.stockRepo.FindByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	views := make([]StockView, 0, len(entries))
	for i := range entries {
		views = append(views, newStockView(&entries[i]))
	}
	return views, nil
}

// ListByProduct returns every branch's stock entry for a product
func (s *StockService) ListByProduct(ctx context.Context, productCode string) ([]StockView, error) {
	entries, err := s.stockRepo.FindByProduct(ctx, productCode)
	if err != nil {
		return nil, err
	}
	views := make([]StockView, 0, len(entries))
	for i := range entries {
		views = append(views, newStockView(&entries[i]))
	}
	return views, nil
}

// SetQuantity overwrites the on-hand quantity for a branch-product pair,
// creating the entry on first write
func (s *StockService) SetQuantity(ctx context.Context, branchID uuid.UUID, productCode string, quantity int64) error {
	entry, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		entry, err = inventory.NewStockEntry(branchID, productCode, 0)
		if err != nil {
			return err
		}
	}
	if err := entry.Set(quantity); err != nil {
		return err
	}
	if err := s.stockRepo.Save(ctx, entry); err != nil {
		return err
	}

	s.logger.Info("Stock quantity overwritten",
		zap.String("branch_id", branchID.String()),
		zap.String("product_code", productCode),
		zap.Int64("quantity", quantity),
	)
	return nil
}

// AdjustQuantity applies a signed delta to the on-hand quantity, flooring
// at zero. Returns the delta actually applied.
func (s *StockService) AdjustQuantity(ctx context.Context, branchID uuid.UUID, productCode string, delta int64) (int64, error) {
	entry, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return 0, err
		}
		entry, err = inventory.NewStockEntry(branchID, productCode, 0)
		if err != nil {
			return 0, err
		}
	}

	if entry.WasClamped(delta) {
		s.logger.Warn("Stock adjustment clamped at zero",
			zap.String("branch_id", branchID.String()),
			zap.String("product_code", productCode),
			zap.Int64("delta", delta),
			zap.Int64("on_hand", entry.Quantity),
		)
	}
	applied := entry.Adjust(delta)

	if err := s.stockRepo.Save(ctx, entry); err != nil {
		return 0, err
	}
	s.publishEvents(ctx, entry)
	return applied, nil
}

// ImportMode selects how imported quantities combine with existing stock
type ImportMode string

const (
	// ImportModeReplace overwrites the on-hand quantity
	ImportModeReplace ImportMode = "replace"
	// ImportModeMerge adds the imported quantity to the on-hand quantity
	ImportModeMerge ImportMode = "merge"
)

// StockImportLine is one row of a bulk stock import
type StockImportLine struct {
	BranchID    uuid.UUID `json:"branch_id"`
	ProductCode string    `json:"product_code"`
	Quantity    int64     `json:"quantity"`
}

// ImportStats summarizes one bulk stock import
type ImportStats struct {
	Total    int `json:"total"`
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
}

// ImportStocks applies a batch of stock rows. Replace mode overwrites
// each pair's quantity; merge mode adds to it. Invalid rows are counted
// and skipped.
func (s *StockService) ImportStocks(ctx context.Context, lines []StockImportLine, mode ImportMode) (*ImportStats, error) {
	if mode != ImportModeReplace && mode != ImportModeMerge {
		return nil, shared.NewDomainError("INVALID_INPUT", "Import mode must be replace or merge")
	}

	stats := &ImportStats{Total: len(lines)}
	for _, line := range lines {
		if line.BranchID == uuid.Nil || line.ProductCode == "" || line.Quantity < 0 {
			stats.Rejected++
			continue
		}

		var err error
		if mode == ImportModeReplace {
			err = s.SetQuantity(ctx, line.BranchID, line.ProductCode, line.Quantity)
		} else {
			_, err = s.AdjustQuantity(ctx, line.BranchID, line.ProductCode, line.Quantity)
		}
		if err != nil {
			return nil, err
		}
		stats.Applied++
	}

	s.logger.Info("Stock import finished",
		zap.String("mode", string(mode)),
		zap.Int("total", stats.Total),
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
	)
	return stats, nil
}

// RemoveEntry deletes the entry for a branch-product pair; subsequent
// reads see zero stock
func (s *StockService) RemoveEntry(ctx context.Context, branchID uuid.UUID, productCode string) error {
	return s.stockRepo.DeleteByBranchAndProduct(ctx, branchID, productCode)
}

func (s *StockService) publishEvents(ctx context.Context, entry *inventory.StockEntry) {
	events := entry.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if s.eventBus == nil {
		entry.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish stock events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
	entry.ClearDomainEvents()
}

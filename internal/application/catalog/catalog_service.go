package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/catalog"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shared/valueobject"
)

// BranchInput carries the writable fields of a branch
type BranchInput struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// ProductInput carries the writable fields of a catalogue product
type ProductInput struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Barcode      string `json:"barcode"`
	RequiresCold bool   `json:"requires_cold"`
}

// ImportStats summarizes one bulk catalogue import
type ImportStats struct {
	Total    int `json:"total"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Rejected int `json:"rejected"`
}

// Service manages the branch network and the product catalogue
type Service struct {
	branchRepo  catalog.BranchRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewService creates a new catalog Service
func NewService(
	branchRepo catalog.BranchRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		branchRepo:  branchRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateBranch registers a new branch with its geographic position
func (s *Service) CreateBranch(ctx context.Context, input BranchInput) (*catalog.Branch, error) {
	branch, err := catalog.NewBranch(input.Name, input.Address, valueobject.NewLocation(input.Lat, input.Lng))
	if err != nil {
		return nil, err
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	s.logger.Info("Branch registered",
		zap.String("branch_id", branch.ID.String()),
		zap.String("name", branch.Name),
	)
	return branch, nil
}

// UpdateBranch updates a branch's details
func (s *Service) UpdateBranch(ctx context.Context, id uuid.UUID, input BranchInput) (*catalog.Branch, error) {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := branch.Update(input.Name, input.Address, valueobject.NewLocation(input.Lat, input.Lng)); err != nil {
		return nil, err
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// GetBranch returns a branch by ID
func (s *Service) GetBranch(ctx context.Context, id uuid.UUID) (*catalog.Branch, error) {
	return s.branchRepo.FindByID(ctx, id)
}

// ListBranches returns all branches
func (s *Service) ListBranches(ctx context.Context, filter shared.Filter) ([]catalog.Branch, error) {
	return s.branchRepo.FindAll(ctx, filter)
}

// DeleteBranch removes a branch from the network
func (s *Service) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	return s.branchRepo.Delete(ctx, id)
}

// CreateProduct adds a product to the catalogue. The code is the
// business key and must be unique.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*catalog.Product, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	product, err := catalog.NewProduct(input.Code, input.Name, input.Barcode, input.RequiresCold)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates a product's mutable fields; the code never changes
func (s *Service) UpdateProduct(ctx context.Context, code string, input ProductInput) (*catalog.Product, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := product.Update(input.Name, input.Barcode, input.RequiresCold); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns a product by its business key
func (s *Service) GetProduct(ctx context.Context, code string) (*catalog.Product, error) {
	return s.productRepo.FindByCode(ctx, code)
}

// GetProductByBarcode returns a product by barcode
func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	return s.productRepo.FindByBarcode(ctx, barcode)
}

// ListProducts returns all catalogue products
func (s *Service) ListProducts(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	return s.productRepo.FindAll(ctx, filter)
}

// DeleteProduct removes a product from the catalogue
func (s *Service) DeleteProduct(ctx context.Context, code string) error {
	return s.productRepo.DeleteByCode(ctx, code)
}

// ImportProducts upserts a batch of products keyed by code. Rows that
// fail validation are counted and skipped; the rest of the batch still
// lands.
func (s *Service) ImportProducts(ctx context.Context, inputs []ProductInput) (*ImportStats, error) {
	stats := &ImportStats{Total: len(inputs)}

	for _, input := range inputs {
		existing, err := s.productRepo.FindByCode(ctx, input.Code)
		switch {
		case err == nil:
			if updateErr := existing.Update(input.Name, input.Barcode, input.RequiresCold); updateErr != nil {
				stats.Rejected++
				continue
			}
			if saveErr := s.productRepo.Save(ctx, existing); saveErr != nil {
				return nil, saveErr
			}
			stats.Updated++
		case errors.Is(err, shared.ErrNotFound):
			product, newErr := catalog.NewProduct(input.Code, input.Name, input.Barcode, input.RequiresCold)
			if newErr != nil {
				stats.Rejected++
				continue
			}
			if saveErr := s.productRepo.Save(ctx, product); saveErr != nil {
				return nil, saveErr
			}
			stats.Created++
		default:
			return nil, err
		}
	}

	s.logger.Info("Catalogue import finished",
		zap.Int("total", stats.Total),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("rejected", stats.Rejected),
	)
	return stats, nil
}

// ImportBranches upserts a batch of branches keyed by name. Invalid rows
// are counted and skipped.
func (s *Service) ImportBranches(ctx context.Context, inputs []BranchInput) (*ImportStats, error) {
	stats := &ImportStats{Total: len(inputs)}

	existing, err := s.branchRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*catalog.Branch, len(existing))
	for i := range existing {
		byName[existing[i].Name] = &existing[i]
	}

	for _, input := range inputs {
		location := valueobject.NewLocation(input.Lat, input.Lng)
		if branch, ok := byName[input.Name]; ok {
			if updateErr := branch.Update(input.Name, input.Address, location); updateErr != nil {
				stats.Rejected++
				continue
			}
			if saveErr := s.branchRepo.Save(ctx, branch); saveErr != nil {
				return nil, saveErr
			}
			stats.Updated++
			continue
		}

		branch, newErr := catalog.NewBranch(input.Name, input.Address, location)
		if newErr != nil {
			stats.Rejected++
			continue
		}
		if saveErr := s.branchRepo.Save(ctx, branch); saveErr != nil {
			return nil, saveErr
		}
		byName[branch.Name] = branch
		stats.Created++
	}

	s.logger.Info("Branch import finished",
		zap.Int("total", stats.Total),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("rejected", stats.Rejected),
	)
	return stats, nil
}

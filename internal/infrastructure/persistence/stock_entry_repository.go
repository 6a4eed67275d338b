package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmanet/backend/internal/domain/inventory"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/infrastructure/persistence/models"
)

// GormStockEntryRepository implements StockEntryRepository using GORM
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// FindByID finds a stock entry by its ID
func (r *GormStockEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockEntry, error) {
	var model models.StockEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBranchAndProduct finds the entry for a branch-product pair.
// Returns shared.ErrNotFound when no entry exists (meaning zero stock).
func (r *GormStockEntryRepository) FindByBranchAndProduct(ctx context.Context, branchID uuid.UUID, productCode string) (*inventory.StockEntry, error) {
	var model models.StockEntryModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_code = ?", branchID, productCode).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBranch finds all entries for a branch
func (r *GormStockEntryRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockEntry, error) {
	var rows []models.StockEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StockEntryModel{}).Where("branch_id = ?", branchID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockEntries(rows), nil
}

// FindByProduct finds all entries for a product across branches
func (r *GormStockEntryRepository) FindByProduct(ctx context.Context, productCode string) ([]inventory.StockEntry, error) {
	var rows []models.StockEntryModel
	if err := r.db.WithContext(ctx).
		Where("product_code = ?", productCode).
		Order("quantity DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockEntries(rows), nil
}

// FindAll finds all entries matching the filter
func (r *GormStockEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockEntry, error) {
	var rows []models.StockEntryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StockEntryModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockEntries(rows), nil
}

// Save creates or updates a stock entry
func (r *GormStockEntryRepository) Save(ctx context.Context, entry *inventory.StockEntry) error {
	model := models.StockEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteByBranchAndProduct removes an entry; future reads return zero
func (r *GormStockEntryRepository) DeleteByBranchAndProduct(ctx context.Context, branchID uuid.UUID, productCode string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.StockEntryModel{}, "branch_id = ? AND product_code = ?", branchID, productCode)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts entries matching the filter
func (r *GormStockEntryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.StockEntryModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStockEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockEntrySortFields, "product_code")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if orderBy == "product_code" && filter.OrderDir == "" {
		orderDir = "ASC"
	}
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormStockEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("product_code ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "product_code":
			query = query.Where("product_code = ?", value)
		case "in_stock":
			if value == true {
				query = query.Where("quantity > 0")
			} else {
				query = query.Where("quantity = 0")
			}
		}
	}
	return query
}

func toStockEntries(rows []models.StockEntryModel) []inventory.StockEntry {
	entries := make([]inventory.StockEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

// Ensure GormStockEntryRepository implements StockEntryRepository
var _ inventory.StockEntryRepository = (*GormStockEntryRepository)(nil)

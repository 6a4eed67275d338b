package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shortage"
	"github.com/pharmanet/backend/internal/infrastructure/persistence/models"
)

// GormShortageReportRepository implements ReportRepository using GORM
type GormShortageReportRepository struct {
	db *gorm.DB
}

// NewGormShortageReportRepository creates a new GormShortageReportRepository
func NewGormShortageReportRepository(db *gorm.DB) *GormShortageReportRepository {
	return &GormShortageReportRepository{db: db}
}

// FindByID finds a report by its ID
func (r *GormShortageReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*shortage.Report, error) {
	var model models.ShortageReportModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all reports matching the filter
func (r *GormShortageReportRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shortage.Report, error) {
	var rows []models.ShortageReportModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ShortageReportModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReports(rows), nil
}

// FindOpen finds all unresolved reports
func (r *GormShortageReportRepository) FindOpen(ctx context.Context, filter shared.Filter) ([]shortage.Report, error) {
	var rows []models.ShortageReportModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ShortageReportModel{}).
			Where("status = ?", string(shortage.StatusOpen)),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReports(rows), nil
}

// FindByRequester finds all reports raised by a branch
func (r *GormShortageReportRepository) FindByRequester(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]shortage.Report, error) {
	var rows []models.ShortageReportModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ShortageReportModel{}).
			Where("requester_branch_id = ?", branchID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReports(rows), nil
}

// Save creates or updates a report
func (r *GormShortageReportRepository) Save(ctx context.Context, report *shortage.Report) error {
	model := models.ShortageReportModelFromDomain(report)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts reports matching the filter
func (r *GormShortageReportRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ShortageReportModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormShortageReportRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ShortageReportSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormShortageReportRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("product_code ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_code":
			query = query.Where("product_code = ?", value)
		case "requester_branch_id":
			query = query.Where("requester_branch_id = ?", value)
		case "archived":
			query = query.Where("archived_by_requester = ?", value)
		}
	}
	return query
}

func toReports(rows []models.ShortageReportModel) []shortage.Report {
	reports := make([]shortage.Report, len(rows))
	for i := range rows {
		reports[i] = *rows[i].ToDomain()
	}
	return reports
}

// Ensure GormShortageReportRepository implements ReportRepository
var _ shortage.ReportRepository = (*GormShortageReportRepository)(nil)

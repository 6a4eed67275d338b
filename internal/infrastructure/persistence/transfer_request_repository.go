package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/transfer"
	"github.com/pharmanet/backend/internal/infrastructure/persistence/models"
)

// GormTransferRequestRepository implements RequestRepository using GORM
type GormTransferRequestRepository struct {
	db *gorm.DB
}

// NewGormTransferRequestRepository creates a new GormTransferRequestRepository
func NewGormTransferRequestRepository(db *gorm.DB) *GormTransferRequestRepository {
	return &GormTransferRequestRepository{db: db}
}

// FindByID finds a request by its ID
func (r *GormTransferRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.Request, error) {
	var model models.TransferRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all requests matching the filter
func (r *GormTransferRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.Request, error) {
	var rows []models.TransferRequestModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransferRequestModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

// FindByRequester finds all requests submitted by a branch
func (r *GormTransferRequestRepository) FindByRequester(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]transfer.Request, error) {
	var rows []models.TransferRequestModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransferRequestModel{}).
			Where("requester_branch_id = ?", branchID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

// FindByTarget finds all requests targeting a branch as donor
func (r *GormTransferRequestRepository) FindByTarget(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]transfer.Request, error) {
	var rows []models.TransferRequestModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransferRequestModel{}).
			Where("target_branch_id = ?", branchID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

// FindByDriver finds all requests assigned to a driver
func (r *GormTransferRequestRepository) FindByDriver(ctx context.Context, driverID uuid.UUID, filter shared.Filter) ([]transfer.Request, error) {
	var rows []models.TransferRequestModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransferRequestModel{}).
			Where("driver_id = ?", driverID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

// FindByStatus finds all requests in any of the given statuses
func (r *GormTransferRequestRepository) FindByStatus(ctx context.Context, statuses []transfer.Status, filter shared.Filter) ([]transfer.Request, error) {
	if len(statuses) == 0 {
		return []transfer.Request{}, nil
	}

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var rows []models.TransferRequestModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransferRequestModel{}).
			Where("status IN ?", values),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

// FindOverduePending finds PENDING requests whose deadline has passed.
// Strictly before now: a request at exactly its deadline is not yet
// expirable, matching the aggregate's guard.
func (r *GormTransferRequestRepository) FindOverduePending(ctx context.Context, now time.Time) ([]transfer.Request, error) {
	var rows []models.TransferRequestModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(transfer.StatusPending), now).
		Order("expires_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

// FindPendingAudit finds requests flagged for discrepancy audit
func (r *GormTransferRequestRepository) FindPendingAudit(ctx context.Context, filter shared.Filter) ([]transfer.Request, error) {
	var rows []models.TransferRequestModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransferRequestModel{}).
			Where("inventory_status = ?", string(transfer.AuditPending)),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

// HasActiveRequest reports whether the requester already has an active
// request with the target branch for the product
func (r *GormTransferRequestRepository) HasActiveRequest(ctx context.Context, requesterBranchID, targetBranchID uuid.UUID, productCode string) (bool, error) {
	active := transfer.ActiveStatuses()
	values := make([]string, len(active))
	for i, s := range active {
		values[i] = string(s)
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransferRequestModel{}).
		Where("requester_branch_id = ? AND target_branch_id = ? AND product_code = ? AND status IN ?",
			requesterBranchID, targetBranchID, productCode, values).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a request
func (r *GormTransferRequestRepository) Save(ctx context.Context, request *transfer.Request) error {
	model := models.TransferRequestModelFromDomain(request)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version compare-and-set).
// Returns shared.ErrConcurrencyConflict when another writer won.
func (r *GormTransferRequestRepository) SaveWithLock(ctx context.Context, request *transfer.Request) error {
	model := models.TransferRequestModelFromDomain(request)
	currentVersion := model.Version
	model.Version = currentVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.TransferRequestModel{}).
		Where("id = ? AND version = ?", model.ID, currentVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	request.Version = model.Version
	return nil
}

// Delete hard-removes a request (administrative pruning)
func (r *GormTransferRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransferRequestModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts requests matching the filter
func (r *GormTransferRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TransferRequestModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus returns request counts grouped by status
func (r *GormTransferRequestRepository) CountByStatus(ctx context.Context) (map[transfer.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TransferRequestModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[transfer.Status]int64, len(rows))
	for _, row := range rows {
		counts[transfer.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *GormTransferRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TransferRequestSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormTransferRequestRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("product_code ILIKE ? OR issue_number ILIKE ? OR receipt_number ILIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_code":
			query = query.Where("product_code = ?", value)
		case "requester_branch_id":
			query = query.Where("requester_branch_id = ?", value)
		case "target_branch_id":
			query = query.Where("target_branch_id = ?", value)
		case "driver_id":
			query = query.Where("driver_id = ?", value)
		case "inventory_status":
			query = query.Where("inventory_status = ?", value)
		case "archived":
			query = query.Where("archived_by_requester = ?", value)
		}
	}
	return query
}

func toRequests(rows []models.TransferRequestModel) []transfer.Request {
	requests := make([]transfer.Request, len(rows))
	for i := range rows {
		requests[i] = *rows[i].ToDomain()
	}
	return requests
}

// Ensure GormTransferRequestRepository implements RequestRepository
var _ transfer.RequestRepository = (*GormTransferRequestRepository)(nil)

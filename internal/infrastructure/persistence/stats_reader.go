package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/pharmanet/backend/internal/domain/report"
	"github.com/pharmanet/backend/internal/domain/transfer"
)

// GormStatsReader answers aggregate reporting queries straight from SQL.
// Read models only; it never loads full aggregates.
type GormStatsReader struct {
	db *gorm.DB
}

// NewGormStatsReader creates a new GormStatsReader
func NewGormStatsReader(db *gorm.DB) *GormStatsReader {
	return &GormStatsReader{db: db}
}

// TopRequestedProducts ranks products by how often they were requested
func (r *GormStatsReader) TopRequestedProducts(ctx context.Context, limit int) ([]report.ProductCount, error) {
	var rows []report.ProductCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT tr.product_code,
		       COALESCE(p.name, '') AS product_name,
		       COUNT(*) AS count
		FROM transfer_requests tr
		LEFT JOIN products p ON p.code = tr.product_code
		GROUP BY tr.product_code, p.name
		ORDER BY count DESC, tr.product_code ASC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BranchActivity summarizes each branch's transfer traffic
func (r *GormStatsReader) BranchActivity(ctx context.Context) ([]report.BranchActivity, error) {
	var rows []report.BranchActivity
	err := r.db.WithContext(ctx).Raw(`
		SELECT b.id AS branch_id,
		       b.name,
		       COALESCE(SUM(CASE WHEN tr.requester_branch_id = b.id THEN 1 ELSE 0 END), 0) AS outgoing,
		       COALESCE(SUM(CASE WHEN tr.target_branch_id = b.id THEN 1 ELSE 0 END), 0)    AS incoming,
		       COALESCE(SUM(CASE WHEN tr.status = ? THEN 1 ELSE 0 END), 0)                 AS completed,
		       COALESCE(SUM(CASE WHEN tr.status = ? THEN 1 ELSE 0 END), 0)                 AS expired
		FROM branches b
		LEFT JOIN transfer_requests tr
		  ON tr.requester_branch_id = b.id OR tr.target_branch_id = b.id
		GROUP BY b.id, b.name
		ORDER BY b.name ASC`,
		string(transfer.StatusCompleted), string(transfer.StatusExpired)).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

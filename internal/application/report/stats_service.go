package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/report"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shortage"
	"github.com/pharmanet/backend/internal/domain/transfer"
)

// StatsReader is the query-side port for dashboard aggregations that do
// not fit the aggregate repositories
type StatsReader interface {
	// TopRequestedProducts ranks products by request count, highest first
	TopRequestedProducts(ctx context.Context, limit int) ([]report.ProductCount, error)
	// BranchActivity summarizes per-branch transfer traffic
	BranchActivity(ctx context.Context) ([]report.BranchActivity, error)
}

// StatsService assembles the operations dashboard
type StatsService struct {
	requestRepo  transfer.RequestRepository
	shortageRepo shortage.ReportRepository
	reader       StatsReader
	logger       *zap.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(
	requestRepo transfer.RequestRepository,
	shortageRepo shortage.ReportRepository,
	reader StatsReader,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		requestRepo:  requestRepo,
		shortageRepo: shortageRepo,
		reader:       reader,
		logger:       logger,
	}
}

// Dashboard returns the network-wide transfer summary
func (s *StatsService) Dashboard(ctx context.Context) (*report.DashboardStats, error) {
	counts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	openShortages, err := s.shortageRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"status": string(shortage.StatusOpen)},
	})
	if err != nil {
		return nil, err
	}

	return &report.DashboardStats{
		TotalRequests:     total,
		PendingRequests:   counts[transfer.StatusPending],
		CompletedRequests: counts[transfer.StatusCompleted],
		RejectedRequests:  counts[transfer.StatusRejected],
		ExpiredRequests:   counts[transfer.StatusExpired],
		OpenShortages:     openShortages,
	}, nil
}

// TopProducts ranks the most requested products
func (s *StatsService) TopProducts(ctx context.Context, limit int) ([]report.ProductCount, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.reader.TopRequestedProducts(ctx, limit)
}

// BranchActivity summarizes each branch's transfer traffic
func (s *StatsService) BranchActivity(ctx context.Context) ([]report.BranchActivity, error) {
	return s.reader.BranchActivity(ctx)
}

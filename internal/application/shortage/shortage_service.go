package shortage

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shortage"
)

// ReportView is the read projection of a shortage report
type ReportView struct {
	ID                uuid.UUID       `json:"id"`
	RequesterBranchID uuid.UUID       `json:"requester_branch_id"`
	ProductCode       string          `json:"product_code"`
	RequestedQuantity int64           `json:"requested_quantity"`
	ProvidedQuantity  *int64          `json:"provided_quantity,omitempty"`
	Status            shortage.Status `json:"status"`
	Archived          bool            `json:"archived_by_requester"`
	CreatedAt         int64           `json:"created_at"`
	ResolvedAt        *int64          `json:"resolved_at,omitempty"`
}

func newReportView(r *shortage.Report) ReportView {
	view := ReportView{
		ID:                r.ID,
		RequesterBranchID: r.RequesterBranchID,
		ProductCode:       r.ProductCode,
		RequestedQuantity: r.RequestedQuantity,
		ProvidedQuantity:  r.ProvidedQuantity,
		Status:            r.Status,
		Archived:          r.ArchivedByRequester,
		CreatedAt:         r.CreatedAt.UnixMilli(),
	}
	if r.ResolvedAt != nil {
		ms := r.ResolvedAt.UnixMilli()
		view.ResolvedAt = &ms
	}
	return view
}

// Service manages network-wide shortage reports raised when no branch
// can fulfill a transfer request
type Service struct {
	reportRepo shortage.ReportRepository
	eventBus   shared.EventPublisher
	logger     *zap.Logger
}

// NewService creates a new shortage Service
func NewService(
	reportRepo shortage.ReportRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		reportRepo: reportRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// GetReport returns a report by ID
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*ReportView, error) {
	report, err := s.reportRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := newReportView(report)
	return &view, nil
}

// ListOpen returns all unresolved reports
func (s *Service) ListOpen(ctx context.Context, filter shared.Filter) ([]ReportView, error) {
	reports, err := s.reportRepo.FindOpen(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toReportViews(reports), nil
}

// ListByRequester returns all reports raised by a branch
func (s *Service) ListByRequester(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]ReportView, error) {
	reports, err := s.reportRepo.FindByRequester(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	return toReportViews(reports), nil
}

// Resolve closes a report, recording how much the shortage manager
// sourced externally
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, providedQuantity int64) error {
	report, err := s.reportRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := report.Resolve(providedQuantity); err != nil {
		return err
	}
	if err := s.reportRepo.Save(ctx, report); err != nil {
		return err
	}

	events := report.GetDomainEvents()
	if len(events) > 0 && s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Error("Failed to publish shortage events", zap.Error(err))
		}
	}
	report.ClearDomainEvents()

	s.logger.Info("Shortage resolved",
		zap.String("report_id", report.ID.String()),
		zap.String("product_code", report.ProductCode),
		zap.Int64("provided_quantity", providedQuantity),
	)
	return nil
}

// Archive hides a resolved report from the default view
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	report, err := s.reportRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	report.Archive()
	return s.reportRepo.Save(ctx, report)
}

func toReportViews(reports []shortage.Report) []ReportView {
	views := make([]ReportView, 0, len(reports))
	for i := range reports {
		views = append(views, newReportView(&reports[i]))
	}
	return views
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shortage"
	"github.com/pharmanet/backend/internal/domain/transfer"
)

// Severity classifies a notification for client-side presentation
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notification is the wire format pushed to websocket clients
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// branchAudience is implemented by events that are scoped to specific
// branches rather than the whole network.
type branchAudience interface {
	Recipients() []uuid.UUID
}

// Notifier translates domain events into client notifications and pushes
// them to connected websocket clients. Branch-scoped events go to the
// involved branches only; network-wide events, such as shortages, are
// broadcast to everyone.
type Notifier struct {
	hub    *Hub
	logger *zap.Logger
}

// NewNotifier creates a new Notifier
func NewNotifier(hub *Hub, logger *zap.Logger) *Notifier {
	return &Notifier{hub: hub, logger: logger}
}

// EventTypes returns the event types the notifier pushes to clients
func (n *Notifier) EventTypes() []string {
	return []string{
		transfer.EventTypeRequestCreated,
		transfer.EventTypeRequestApproved,
		transfer.EventTypeRequestRejected,
		transfer.EventTypeRequestCancelled,
		transfer.EventTypeRequestExpired,
		transfer.EventTypeDriverAssigned,
		transfer.EventTypeRequestPickedUp,
		transfer.EventTypeRequestDelivered,
		transfer.EventTypeRequestCompleted,
		transfer.EventTypeDiscrepancyResolved,
		shortage.EventTypeShortageReported,
		shortage.EventTypeShortageResolved,
	}
}

// Handle renders the event as a notification and routes it to the
// affected clients
func (n *Notifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(render(event))
	if err != nil {
		return fmt.Errorf("failed to serialize notification for %s: %w", event.EventType(), err)
	}

	audience, scoped := event.(branchAudience)
	if !scoped {
		n.hub.Broadcast(payload)
		return nil
	}

	delivered := 0
	for _, branchID := range audience.Recipients() {
		delivered += n.hub.SendToBranch(branchID, payload)
	}
	n.logger.Debug("Notification dispatched",
		zap.String("event_type", event.EventType()),
		zap.Int("delivered", delivered))
	return nil
}

// render builds the client notification for a domain event. Events the
// switch does not know still produce a generic info notification so new
// event types degrade gracefully.
func render(event shared.DomainEvent) Notification {
	notification := Notification{
		ID:        uuid.New(),
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	}

	switch e := event.(type) {
	case *transfer.RequestCreatedEvent:
		notification.Message = fmt.Sprintf("Transfer request created: %d x %s", e.RequestedQuantity, e.ProductCode)
	case *transfer.RequestApprovedEvent:
		notification.Severity = SeveritySuccess
		if e.Shortfall > 0 {
			notification.Severity = SeverityWarning
			notification.Message = fmt.Sprintf("Transfer request approved: %d of %d x %s issued (%s)", e.IssuedQuantity, e.RequestedQuantity, e.ProductCode, e.IssueNumber)
		} else {
			notification.Message = fmt.Sprintf("Transfer request approved: %d x %s (%s)", e.IssuedQuantity, e.ProductCode, e.IssueNumber)
		}
	case *transfer.RequestRejectedEvent:
		notification.Severity = SeverityError
		notification.Message = fmt.Sprintf("Transfer request for %d x %s rejected: %s", e.RequestedQuantity, e.ProductCode, e.Reason)
	case *transfer.RequestCancelledEvent:
		notification.Severity = SeverityWarning
		notification.Message = fmt.Sprintf("Transfer request for %d x %s was cancelled", e.RequestedQuantity, e.ProductCode)
	case *transfer.RequestExpiredEvent:
		notification.Severity = SeverityWarning
		notification.Message = fmt.Sprintf("Transfer request for %d x %s expired unapproved, reservation released", e.RequestedQuantity, e.ProductCode)
	case *transfer.DriverAssignedEvent:
		notification.Message = fmt.Sprintf("Driver assigned to transfer of %d x %s", e.RequestedQuantity, e.ProductCode)
	case *transfer.RequestPickedUpEvent:
		notification.Message = fmt.Sprintf("Transfer of %d x %s picked up by driver", e.RequestedQuantity, e.ProductCode)
	case *transfer.RequestDeliveredEvent:
		notification.Message = fmt.Sprintf("Transfer of %d x %s delivered, awaiting reception", e.RequestedQuantity, e.ProductCode)
	case *transfer.RequestCompletedEvent:
		notification.Severity = SeveritySuccess
		notification.Message = fmt.Sprintf("Transfer completed: %d x %s received (%s)", e.ReceivedQuantity, e.ProductCode, e.ReceiptNumber)
	case *transfer.DiscrepancyResolvedEvent:
		notification.Message = fmt.Sprintf("Discrepancy on transfer of %s resolved: %s", e.ProductCode, e.AuditStatus)
	case *shortage.ShortageReportedEvent:
		notification.Severity = SeverityWarning
		notification.Message = fmt.Sprintf("Network-wide shortage reported: %d x %s unavailable", e.RequestedQuantity, e.ProductCode)
	case *shortage.ShortageResolvedEvent:
		notification.Severity = SeveritySuccess
		notification.Message = fmt.Sprintf("Shortage of %s resolved: %d secured", e.ProductCode, e.ProvidedQuantity)
	default:
		notification.Message = fmt.Sprintf("Update: %s", event.EventType())
	}
	return notification
}

var _ shared.EventHandler = (*Notifier)(nil)

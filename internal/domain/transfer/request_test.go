package transfer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWindow = 30 * time.Minute

func newPendingRequest(t *testing.T) *Request {
	t.Helper()
	r, err := NewRequest(uuid.New(), uuid.New(), "1001", 10, testWindow)
	require.NoError(t, err)
	return r
}

func newDistributionRequest(t *testing.T) *Request {
	t.Helper()
	r := newPendingRequest(t)
	require.NoError(t, r.Approve("IS-1", 10))
	return r
}

func TestNewRequest(t *testing.T) {
	requester := uuid.New()
	target := uuid.New()

	t.Run("creates pending request with deadline and attempt history", func(t *testing.T) {
		before := time.Now()
		r, err := NewRequest(requester, target, "1001", 10, testWindow)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, r.Status)
		assert.Equal(t, int64(10), r.RequestedQuantity)
		assert.Nil(t, r.IssuedQuantity)
		assert.Equal(t, []uuid.UUID{target}, r.AttemptedBranchIDs)
		assert.WithinDuration(t, before.Add(testWindow), r.ExpiresAt, time.Second)
		assert.Len(t, r.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeRequestCreated, r.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewRequest(requester, target, "1001", 0, testWindow)
		assert.Error(t, err)
	})

	t.Run("rejects requester as its own donor", func(t *testing.T) {
		_, err := NewRequest(requester, requester, "1001", 5, testWindow)
		assert.Error(t, err)
	})

	t.Run("rejects empty product code", func(t *testing.T) {
		_, err := NewRequest(requester, target, "", 5, testWindow)
		assert.Error(t, err)
	})
}

func TestRequest_Approve(t *testing.T) {
	t.Run("full approval moves to distribution without audit flag", func(t *testing.T) {
		r := newPendingRequest(t)

		err := r.Approve("IS-1", 10)
		require.NoError(t, err)

		assert.Equal(t, StatusDistribution, r.Status)
		assert.Equal(t, "IS-1", r.IssueNumber)
		require.NotNil(t, r.IssuedQuantity)
		assert.Equal(t, int64(10), *r.IssuedQuantity)
		assert.NotNil(t, r.RespondedAt)
		assert.Equal(t, AuditNone, r.InventoryStatus)
		assert.Equal(t, int64(0), r.Shortfall())
	})

	t.Run("partial approval flags inventory audit", func(t *testing.T) {
		r := newPendingRequest(t)

		require.NoError(t, r.Approve("IS-2", 7))

		assert.Equal(t, StatusDistribution, r.Status)
		assert.Equal(t, AuditPending, r.InventoryStatus)
		assert.Equal(t, int64(3), r.Shortfall())
	})

	t.Run("requires issue number", func(t *testing.T) {
		r := newPendingRequest(t)
		err := r.Approve("", 10)
		assert.Error(t, err)
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("rejects issued quantity above requested", func(t *testing.T) {
		r := newPendingRequest(t)
		assert.Error(t, r.Approve("IS-1", 11))
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("rejects non-positive issued quantity", func(t *testing.T) {
		r := newPendingRequest(t)
		assert.Error(t, r.Approve("IS-1", 0))
	})
}

func TestRequest_Reject(t *testing.T) {
	r := newPendingRequest(t)

	err := r.Reject("out of date stock")
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, r.Status)
	assert.Equal(t, "out of date stock", r.RejectionReason)
	assert.NotNil(t, r.RespondedAt)
	assert.True(t, r.Status.IsTerminal())

	t.Run("requires a reason", func(t *testing.T) {
		r := newPendingRequest(t)
		assert.Error(t, r.Reject(""))
		assert.Equal(t, StatusPending, r.Status)
	})
}

func TestRequest_Cancel(t *testing.T) {
	r := newPendingRequest(t)

	require.NoError(t, r.Cancel())
	assert.Equal(t, StatusCancelled, r.Status)
	assert.True(t, r.Status.IsTerminal())
}

func TestRequest_Expire(t *testing.T) {
	t.Run("overdue pending request expires", func(t *testing.T) {
		r := newPendingRequest(t)

		err := r.Expire(r.ExpiresAt.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, r.Status)
	})

	t.Run("deadline not reached", func(t *testing.T) {
		r := newPendingRequest(t)

		err := r.Expire(r.ExpiresAt.Add(-time.Minute))
		assert.Error(t, err)
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("exactly at the deadline is not yet overdue", func(t *testing.T) {
		r := newPendingRequest(t)

		assert.False(t, r.IsOverdue(r.ExpiresAt))
		err := r.Expire(r.ExpiresAt)
		assert.Error(t, err)
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("second evaluation is rejected by the status guard", func(t *testing.T) {
		r := newPendingRequest(t)
		deadline := r.ExpiresAt.Add(time.Minute)

		require.NoError(t, r.Expire(deadline))
		err := r.Expire(deadline)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.Equal(t, StatusExpired, r.Status)
	})
}

func TestRequest_DeliveryPipeline(t *testing.T) {
	driverID := uuid.New()
	r := newDistributionRequest(t)

	require.NoError(t, r.AssignDriver(driverID))
	assert.Equal(t, StatusAssigned, r.Status)
	require.NotNil(t, r.DriverID)
	assert.Equal(t, driverID, *r.DriverID)

	require.NoError(t, r.ConfirmPickup())
	assert.Equal(t, StatusPickedUp, r.Status)
	assert.NotNil(t, r.PickedUpAt)

	require.NoError(t, r.CompleteDelivery())
	assert.Equal(t, StatusDelivered, r.Status)
	assert.NotNil(t, r.DeliveredAt)

	require.NoError(t, r.ConfirmReception("RC-1"))
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, "RC-1", r.ReceiptNumber)
	assert.Equal(t, int64(10), r.ReceivedQuantity())
	assert.True(t, r.Status.IsTerminal())
}

func TestRequest_ConfirmReception_RequiresReceipt(t *testing.T) {
	r := newDistributionRequest(t)
	require.NoError(t, r.AssignDriver(uuid.New()))
	require.NoError(t, r.ConfirmPickup())
	require.NoError(t, r.CompleteDelivery())

	assert.Error(t, r.ConfirmReception(""))
	assert.Equal(t, StatusDelivered, r.Status)
}

// Every transition called from a wrong predecessor state must leave the
// request entirely unchanged and return a state-conflict error.
func TestRequest_GuardTotality(t *testing.T) {
	transitions := map[string]func(r *Request) error{
		"UpdateQuantity":   func(r *Request) error { return r.UpdateQuantity(5) },
		"Approve":          func(r *Request) error { return r.Approve("IS-9", 5) },
		"Reject":           func(r *Request) error { return r.Reject("no") },
		"Cancel":           func(r *Request) error { return r.Cancel() },
		"Expire":           func(r *Request) error { return r.Expire(time.Now().Add(time.Hour)) },
		"AssignDriver":     func(r *Request) error { return r.AssignDriver(uuid.New()) },
		"ConfirmPickup":    func(r *Request) error { return r.ConfirmPickup() },
		"CompleteDelivery": func(r *Request) error { return r.CompleteDelivery() },
		"ConfirmReception": func(r *Request) error { return r.ConfirmReception("RC-9") },
	}

	requiredPredecessor := map[string]Status{
		"UpdateQuantity":   StatusPending,
		"Approve":          StatusPending,
		"Reject":           StatusPending,
		"Cancel":           StatusPending,
		"Expire":           StatusPending,
		"AssignDriver":     StatusDistribution,
		"ConfirmPickup":    StatusAssigned,
		"CompleteDelivery": StatusPickedUp,
		"ConfirmReception": StatusDelivered,
	}

	allStatuses := []Status{
		StatusPending, StatusDistribution, StatusAssigned, StatusPickedUp,
		StatusDelivered, StatusCompleted, StatusRejected, StatusExpired, StatusCancelled,
	}

	for name, transition := range transitions {
		for _, status := range allStatuses {
			if status == requiredPredecessor[name] {
				continue
			}
			t.Run(name+" from "+string(status), func(t *testing.T) {
				r := newPendingRequest(t)
				r.Status = status
				r.ClearDomainEvents()
				snapshot := *r

				err := transition(r)

				require.Error(t, err)
				assert.Equal(t, snapshot.Status, r.Status)
				assert.Equal(t, snapshot.RequestedQuantity, r.RequestedQuantity)
				assert.Equal(t, snapshot.IssueNumber, r.IssueNumber)
				assert.Equal(t, snapshot.ReceiptNumber, r.ReceiptNumber)
				assert.Equal(t, snapshot.Version, r.Version)
				assert.Empty(t, r.GetDomainEvents())
			})
		}
	}
}

func TestRequest_UpdateQuantity(t *testing.T) {
	r := newPendingRequest(t)

	require.NoError(t, r.UpdateQuantity(15))
	assert.Equal(t, int64(15), r.RequestedQuantity)

	assert.Error(t, r.UpdateQuantity(0))
	assert.Equal(t, int64(15), r.RequestedQuantity)
}

func TestRequest_DiscrepancyAudit(t *testing.T) {
	newAuditRequest := func(t *testing.T) *Request {
		r := newPendingRequest(t)
		require.NoError(t, r.Approve("IS-3", 7))
		require.Equal(t, AuditPending, r.InventoryStatus)
		return r
	}

	t.Run("mark item found", func(t *testing.T) {
		r := newAuditRequest(t)
		require.NoError(t, r.MarkItemFound("picker missed the fridge shelf"))
		assert.Equal(t, AuditItemFound, r.InventoryStatus)
		assert.Equal(t, "picker missed the fridge shelf", r.InventoryNote)
	})

	t.Run("confirm deficit", func(t *testing.T) {
		r := newAuditRequest(t)
		require.NoError(t, r.ConfirmDeficit("three units missing"))
		assert.Equal(t, AuditConfirmedDeficit, r.InventoryStatus)
	})

	t.Run("audit is not re-openable", func(t *testing.T) {
		r := newAuditRequest(t)
		require.NoError(t, r.MarkItemFound("found"))
		assert.Error(t, r.ConfirmDeficit("lost again"))
		assert.Equal(t, AuditItemFound, r.InventoryStatus)
	})

	t.Run("full approval never enters audit", func(t *testing.T) {
		r := newDistributionRequest(t)
		assert.Error(t, r.MarkItemFound("nothing to audit"))
	})
}

func TestRequest_CanDelete(t *testing.T) {
	deletable := map[Status]bool{
		StatusCancelled: true,
		StatusRejected:  true,
		StatusExpired:   true,
		StatusCompleted: false,
		StatusPending:   false,
		StatusPickedUp:  false,
	}

	for status, want := range deletable {
		r := newPendingRequest(t)
		r.Status = status
		assert.Equal(t, want, r.CanDelete(), "status %s", status)
	}
}

func TestRequest_TimeRemaining(t *testing.T) {
	r := newPendingRequest(t)

	assert.Equal(t, time.Duration(0), r.TimeRemaining(r.ExpiresAt.Add(time.Minute)))
	assert.InDelta(t, float64(10*time.Minute), float64(r.TimeRemaining(r.ExpiresAt.Add(-10*time.Minute))), float64(time.Second))
}

func TestStatus_IsActive(t *testing.T) {
	for _, s := range ActiveStatuses() {
		assert.True(t, s.IsActive(), "status %s", s)
	}
	for _, s := range []Status{StatusDelivered, StatusCompleted, StatusRejected, StatusExpired, StatusCancelled} {
		assert.False(t, s.IsActive(), "status %s", s)
	}
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmanet/backend/internal/domain/transfer"
)

// TransferRequestModel is the persistence model for the Request aggregate root.
type TransferRequestModel struct {
	AggregateModel
	RequesterBranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	TargetBranchID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductCode       string    `gorm:"type:varchar(64);not null;index"`

	RequestedQuantity int64  `gorm:"not null"`
	IssuedQuantity    *int64 `gorm:""`

	Status    string    `gorm:"type:varchar(32);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`

	RespondedAt *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time

	DriverID        *uuid.UUID `gorm:"type:uuid;index"`
	IssueNumber     string     `gorm:"type:varchar(64)"`
	ReceiptNumber   string     `gorm:"type:varchar(64)"`
	RejectionReason string     `gorm:"type:varchar(500)"`

	AttemptedBranchIDs UUIDArray `gorm:"type:jsonb"`

	InventoryStatus string `gorm:"type:varchar(32);index"`
	InventoryNote   string `gorm:"type:varchar(500)"`

	ArchivedByRequester bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (TransferRequestModel) TableName() string {
	return "transfer_requests"
}

// ToDomain converts the persistence model to a domain Request entity.
func (m *TransferRequestModel) ToDomain() *transfer.Request {
	r := &transfer.Request{
		RequesterBranchID:   m.RequesterBranchID,
		TargetBranchID:      m.TargetBranchID,
		ProductCode:         m.ProductCode,
		RequestedQuantity:   m.RequestedQuantity,
		IssuedQuantity:      m.IssuedQuantity,
		Status:              transfer.Status(m.Status),
		ExpiresAt:           m.ExpiresAt,
		RespondedAt:         m.RespondedAt,
		PickedUpAt:          m.PickedUpAt,
		DeliveredAt:         m.DeliveredAt,
		DriverID:            m.DriverID,
		IssueNumber:         m.IssueNumber,
		ReceiptNumber:       m.ReceiptNumber,
		RejectionReason:     m.RejectionReason,
		AttemptedBranchIDs:  []uuid.UUID(m.AttemptedBranchIDs),
		InventoryStatus:     transfer.AuditStatus(m.InventoryStatus),
		InventoryNote:       m.InventoryNote,
		ArchivedByRequester: m.ArchivedByRequester,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain Request entity.
func (m *TransferRequestModel) FromDomain(r *transfer.Request) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.RequesterBranchID = r.RequesterBranchID
	m.TargetBranchID = r.TargetBranchID
	m.ProductCode = r.ProductCode
	m.RequestedQuantity = r.RequestedQuantity
	m.IssuedQuantity = r.IssuedQuantity
	m.Status = string(r.Status)
	m.ExpiresAt = r.ExpiresAt
	m.RespondedAt = r.RespondedAt
	m.PickedUpAt = r.PickedUpAt
	m.DeliveredAt = r.DeliveredAt
	m.DriverID = r.DriverID
	m.IssueNumber = r.IssueNumber
	m.ReceiptNumber = r.ReceiptNumber
	m.RejectionReason = r.RejectionReason
	m.AttemptedBranchIDs = UUIDArray(r.AttemptedBranchIDs)
	m.InventoryStatus = string(r.InventoryStatus)
	m.InventoryNote = r.InventoryNote
	m.ArchivedByRequester = r.ArchivedByRequester
}

// TransferRequestModelFromDomain creates a new persistence model from a domain Request entity.
func TransferRequestModelFromDomain(r *transfer.Request) *TransferRequestModel {
	m := &TransferRequestModel{}
	m.FromDomain(r)
	return m
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmanet/backend/internal/domain/shortage"
)

// ShortageReportModel is the persistence model for the Report aggregate root.
type ShortageReportModel struct {
	AggregateModel
	RequesterBranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductCode       string    `gorm:"type:varchar(64);not null;index"`
	RequestedQuantity int64     `gorm:"not null"`
	ProvidedQuantity  *int64
	Status            string `gorm:"type:varchar(32);not null;index"`
	ResolvedAt        *time.Time

	ArchivedByRequester bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ShortageReportModel) TableName() string {
	return "shortage_reports"
}

// ToDomain converts the persistence model to a domain Report entity.
func (m *ShortageReportModel) ToDomain() *shortage.Report {
	r := &shortage.Report{
		RequesterBranchID:   m.RequesterBranchID,
		ProductCode:         m.ProductCode,
		RequestedQuantity:   m.RequestedQuantity,
		ProvidedQuantity:    m.ProvidedQuantity,
		Status:              shortage.Status(m.Status),
		ResolvedAt:          m.ResolvedAt,
		ArchivedByRequester: m.ArchivedByRequester,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain Report entity.
func (m *ShortageReportModel) FromDomain(r *shortage.Report) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.RequesterBranchID = r.RequesterBranchID
	m.ProductCode = r.ProductCode
	m.RequestedQuantity = r.RequestedQuantity
	m.ProvidedQuantity = r.ProvidedQuantity
	m.Status = string(r.Status)
	m.ResolvedAt = r.ResolvedAt
	m.ArchivedByRequester = r.ArchivedByRequester
}

// ShortageReportModelFromDomain creates a new persistence model from a domain Report entity.
func ShortageReportModelFromDomain(r *shortage.Report) *ShortageReportModel {
	m := &ShortageReportModel{}
	m.FromDomain(r)
	return m
}

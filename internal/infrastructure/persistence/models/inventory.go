package models

import (
	"github.com/google/uuid"

	"github.com/pharmanet/backend/internal/domain/inventory"
)

// StockEntryModel is the persistence model for the StockEntry aggregate root.
// A missing row for a branch-product pair means zero stock.
type StockEntryModel struct {
	AggregateModel
	BranchID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_branch_product,priority:1"`
	ProductCode string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_stock_branch_product,priority:2"`
	Quantity    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StockEntryModel) TableName() string {
	return "stock_entries"
}

// ToDomain converts the persistence model to a domain StockEntry entity.
func (m *StockEntryModel) ToDomain() *inventory.StockEntry {
	e := &inventory.StockEntry{
		BranchID:    m.BranchID,
		ProductCode: m.ProductCode,
		Quantity:    m.Quantity,
	}
	m.PopulateAggregateRoot(&e.BaseAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain StockEntry entity.
func (m *StockEntryModel) FromDomain(e *inventory.StockEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.BranchID = e.BranchID
	m.ProductCode = e.ProductCode
	m.Quantity = e.Quantity
}

// StockEntryModelFromDomain creates a new persistence model from a domain StockEntry entity.
func StockEntryModelFromDomain(e *inventory.StockEntry) *StockEntryModel {
	m := &StockEntryModel{}
	m.FromDomain(e)
	return m
}

package models

import (
	"github.com/pharmanet/backend/internal/domain/catalog"
	"github.com/pharmanet/backend/internal/domain/shared/valueobject"
)

// BranchModel is the persistence model for the Branch aggregate root.
type BranchModel struct {
	AggregateModel
	Name    string  `gorm:"type:varchar(255);not null"`
	Address string  `gorm:"type:varchar(500)"`
	Lat     float64 `gorm:"not null"`
	Lng     float64 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch entity.
func (m *BranchModel) ToDomain() *catalog.Branch {
	b := &catalog.Branch{
		Name:     m.Name,
		Address:  m.Address,
		Location: valueobject.NewLocation(m.Lat, m.Lng),
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain Branch entity.
func (m *BranchModel) FromDomain(b *catalog.Branch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.Address = b.Address
	m.Lat = b.Location.Lat
	m.Lng = b.Location.Lng
}

// BranchModelFromDomain creates a new persistence model from a domain Branch entity.
func BranchModelFromDomain(b *catalog.Branch) *BranchModel {
	m := &BranchModel{}
	m.FromDomain(b)
	return m
}

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	Code         string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(255);not null"`
	Barcode      string `gorm:"type:varchar(64);index"`
	RequiresCold bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		Code:         m.Code,
		Name:         m.Name,
		Barcode:      m.Barcode,
		RequiresCold: m.RequiresCold,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Barcode = p.Barcode
	m.RequiresCold = p.RequiresCold
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

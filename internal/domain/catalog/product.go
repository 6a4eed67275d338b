package catalog

import (
	"time"

	"github.com/pharmanet/backend/internal/domain/shared"
)

// Product represents a catalogue item. The code is the business key and is
// immutable once created; edits preserve it.
type Product struct {
	shared.BaseAggregateRoot
	Code          string
	Name          string
	Barcode       string
	RequiresCold  bool
}

// NewProduct creates a new product
func NewProduct(code, name, barcode string, requiresCold bool) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Barcode:           barcode,
		RequiresCold:      requiresCold,
	}, nil
}

// Update replaces the product's editable attributes. The code is preserved.
func (p *Product) Update(name, barcode string, requiresCold bool) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	p.Name = name
	p.Barcode = barcode
	p.RequiresCold = requiresCold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

package catalog

import (
	"time"

	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shared/valueobject"
)

// Branch represents a retail pharmacy branch. Branches are edited only by
// catalogue admins; requests and stock entries reference them by id.
type Branch struct {
	shared.BaseAggregateRoot
	Name     string
	Address  string
	Location valueobject.Location
}

// NewBranch creates a new branch
func NewBranch(name, address string, location valueobject.Location) (*Branch, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}

	return &Branch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
		Location:          location,
	}, nil
}

// Update replaces the branch's editable attributes
func (b *Branch) Update(name, address string, location valueobject.Location) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}

	b.Name = name
	b.Address = address
	b.Location = location
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// DistanceKmTo returns the great-circle distance to another branch in kilometers
func (b *Branch) DistanceKmTo(other *Branch) float64 {
	return b.Location.DistanceKm(other.Location)
}

package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared"
	"github.com/pharmanet/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a user's function in the transfer workflow
type Role string

const (
	RoleAdmin            Role = "ADMIN"
	RoleBranchManager    Role = "BRANCH_MANAGER"
	RoleDistribution     Role = "DISTRIBUTION"
	RoleDelivery         Role = "DELIVERY"
	RoleInventoryManager Role = "INVENTORY_MANAGER"
	RoleShortageManager  Role = "SHORTAGE_MANAGER"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBranchManager, RoleDistribution, RoleDelivery,
		RoleInventoryManager, RoleShortageManager:
		return true
	}
	return false
}

// Password cost for bcrypt
const bcryptCost = 12

// LastPosition is a driver's last reported GPS position
type LastPosition struct {
	Location   valueobject.Location
	ReportedAt time.Time
}

// User represents a system actor: admins, branch managers, distribution
// staff, drivers, inventory and shortage managers.
type User struct {
	shared.BaseAggregateRoot
	Username     string
	PasswordHash string
	DisplayName  string
	Role         Role
	// BranchID binds branch managers to their branch; nil for other roles.
	BranchID     *uuid.UUID
	LastPosition *LastPosition
	LastLoginAt  *time.Time
}

// NewUser creates a new user with a hashed password
func NewUser(username, password, displayName string, role Role, branchID *uuid.UUID) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(password) < 3 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password is too short")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if role == RoleBranchManager && branchID == nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch managers must be bound to a branch")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		PasswordHash:      string(hash),
		DisplayName:       displayName,
		Role:              role,
		BranchID:          branchID,
	}, nil
}

// VerifyPassword checks a candidate password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password hash
func (u *User) ChangePassword(password string) error {
	if len(password) < 3 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password is too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
	u.IncrementVersion()
}

// UpdatePosition records the user's last known GPS position. Advisory
// data for the live map; never gates a workflow transition.
func (u *User) UpdatePosition(location valueobject.Location, at time.Time) {
	u.LastPosition = &LastPosition{Location: location, ReportedAt: at}
	u.UpdatedAt = at
	u.IncrementVersion()
}

// UpdateProfile replaces the user's editable attributes
func (u *User) UpdateProfile(displayName string) {
	u.DisplayName = displayName
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/domain/shared/valueobject"
)

// UserModel is the persistence model for the User aggregate root.
type UserModel struct {
	AggregateModel
	Username     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	DisplayName  string     `gorm:"type:varchar(255)"`
	Role         string     `gorm:"type:varchar(32);not null;index"`
	BranchID     *uuid.UUID `gorm:"type:uuid;index"`

	LastLat        *float64
	LastLng        *float64
	LastReportedAt *time.Time

	LastLoginAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		Role:         identity.Role(m.Role),
		BranchID:     m.BranchID,
		LastLoginAt:  m.LastLoginAt,
	}
	if m.LastLat != nil && m.LastLng != nil && m.LastReportedAt != nil {
		u.LastPosition = &identity.LastPosition{
			Location:   valueobject.NewLocation(*m.LastLat, *m.LastLng),
			ReportedAt: *m.LastReportedAt,
		}
	}
	m.PopulateAggregateRoot(&u.BaseAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Role = string(u.Role)
	m.BranchID = u.BranchID
	m.LastLoginAt = u.LastLoginAt
	if u.LastPosition != nil {
		lat := u.LastPosition.Location.Lat
		lng := u.LastPosition.Location.Lng
		reported := u.LastPosition.ReportedAt
		m.LastLat = &lat
		m.LastLng = &lng
		m.LastReportedAt = &reported
	} else {
		m.LastLat = nil
		m.LastLng = nil
		m.LastReportedAt = nil
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

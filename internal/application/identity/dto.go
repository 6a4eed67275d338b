package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmanet/backend/internal/domain/identity"
)

// LoginInput contains login credentials
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserInfo is the read projection of a user
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	BranchID    *uuid.UUID `json:"branch_id,omitempty"`
	LastLoginAt *int64     `json:"last_login_at,omitempty"`
}

// LoginResult contains tokens and user info after successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// CreateUserInput contains the fields for registering a user
type CreateUserInput struct {
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	BranchID    *uuid.UUID `json:"branch_id,omitempty"`
}

// PositionInput is a driver's GPS position report
type PositionInput struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func newUserInfo(u *identity.User) UserInfo {
	info := UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		BranchID:    u.BranchID,
	}
	if u.LastLoginAt != nil {
		ms := u.LastLoginAt.UnixMilli()
		info.LastLoginAt = &ms
	}
	return info
}

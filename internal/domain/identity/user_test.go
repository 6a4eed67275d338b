package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmanet/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		u, err := NewUser("Admin", "secret", "System Admin", RoleAdmin, nil)
		require.NoError(t, err)

		assert.Equal(t, "admin", u.Username)
		assert.NotEqual(t, "secret", u.PasswordHash)
		assert.True(t, u.VerifyPassword("secret"))
		assert.False(t, u.VerifyPassword("wrong"))
	})

	t.Run("branch manager requires a branch", func(t *testing.T) {
		_, err := NewUser("manager", "secret", "Manager", RoleBranchManager, nil)
		assert.Error(t, err)

		branchID := uuid.New()
		u, err := NewUser("manager", "secret", "Manager", RoleBranchManager, &branchID)
		require.NoError(t, err)
		assert.Equal(t, branchID, *u.BranchID)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("x", "secret", "X", Role("INTERN"), nil)
		assert.Error(t, err)
	})
}

func TestUser_UpdatePosition(t *testing.T) {
	u, err := NewUser("driver1", "secret", "Driver", RoleDelivery, nil)
	require.NoError(t, err)

	at := time.Now()
	u.UpdatePosition(valueobject.NewLocation(31.2, 29.9), at)

	require.NotNil(t, u.LastPosition)
	assert.Equal(t, 31.2, u.LastPosition.Location.Lat)
	assert.Equal(t, at, u.LastPosition.ReportedAt)
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser("admin", "secret", "Admin", RoleAdmin, nil)
	require.NoError(t, err)

	require.NoError(t, u.ChangePassword("newsecret"))
	assert.True(t, u.VerifyPassword("newsecret"))
	assert.False(t, u.VerifyPassword("secret"))
}

package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/domain/shared"
)

// UserService manages user accounts (admin operations)
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateUser registers a new user account
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	if existing, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	user, err := identity.NewUser(input.Username, input.Password, input.DisplayName, identity.Role(input.Role), input.BranchID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	info := newUserInfo(user)
	return &info, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := newUserInfo(user)
	return &info, nil
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context, filter shared.Filter) ([]UserInfo, error) {
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, newUserInfo(&users[i]))
	}
	return infos, nil
}

// ListDrivers returns all delivery users, for driver assignment pickers
func (s *UserService) ListDrivers(ctx context.Context) ([]UserInfo, error) {
	users, err := s.userRepo.FindByRole(ctx, identity.RoleDelivery)
	if err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, newUserInfo(&users[i]))
	}
	return infos, nil
}

// ChangePassword sets a new password for a user
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(password); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// DeleteUser removes a user account
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}

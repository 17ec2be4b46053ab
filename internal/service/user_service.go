package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserServiceImpl implements ports.UserService.
type UserServiceImpl struct {
	userRepo ports.UserRepository
	log      zerolog.Logger
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(userRepo ports.UserRepository, log zerolog.Logger) *UserServiceImpl {
	return &UserServiceImpl{userRepo: userRepo, log: log}
}

// Create registers a user with a unique email.
func (s *UserServiceImpl) Create(ctx context.Context, req ports.CreateUserRequest) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	user := &domain.User{
		ID:        uuid.New(),
		Name:      req.Name,
		Surname:   req.Surname,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user created")
	return user, nil
}

// Get fetches a user by id.
func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}

// List returns all users.
func (s *UserServiceImpl) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// Delete removes a user; their wallets go with them, their transfer
// logs stay.
func (s *UserServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("delete user: %w", err))
	}
	s.log.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}

package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/pkg/security"
)

var ErrSelfDelete = errors.New("users cannot delete their own account")

type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	u := &model.User{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   model.UserRole(req.Role),
		Active: true,
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	if req.Active != nil {
		u.Active = *req.Active
	}

	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListProviders(ctx context.Context) ([]*model.User, error) {
	return s.repo.ListProviders(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Role != nil {
		u.Role = model.UserRole(*req.Role)
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// Toggle flips the active flag and returns the new state.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.repo.SetActive(ctx, id, !u.Active); err != nil {
		return nil, fmt.Errorf("failed to toggle user: %w", err)
	}
	u.Active = !u.Active
	return u, nil
}

// Delete removes the user and, in the same transaction, every row that hangs
// off the account: notifications, appointments (as client or provider) and
// availabilities.
func (s *Service) Delete(ctx context.Context, session *model.Session, id uuid.UUID) error {
	if session != nil && session.UserID == id {
		return ErrSelfDelete
	}
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/rs/zerolog/log"
)

// UserService handles registration and profile lookups.
type UserService struct {
	userRepo  domain.UserRepository
	userQueue domain.Queue
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, userQueue domain.Queue) *UserService {
	return &UserService{
		userRepo:  userRepo,
		userQueue: userQueue,
	}
}

// Register creates an account and enqueues a welcome job. The job is best
// effort: registration succeeds even when the queue is down.
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, domain.NewValidationError("Missing email")
	}
	if password == "" {
		return nil, domain.NewValidationError("Missing password")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewValidationError("Already exist")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: HashPassword(password),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.userQueue.Enqueue(ctx, domain.JobPayload{UserID: user.ID}); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to enqueue welcome job")
	}

	return user, nil
}

// GetByID returns the user for a resolved session.
func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

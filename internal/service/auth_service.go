package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mansoorceksport/filevault/internal/domain"
)

// AuthService issues, resolves and revokes session tokens. Tokens are
// opaque: the only record tying a token to a user lives in the session
// repository, with a fixed TTL from issuance.
type AuthService struct {
	userRepo domain.UserRepository
	sessions domain.SessionRepository
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
	}
}

// Issue verifies the credentials and returns a fresh session token. An
// unknown email and a wrong password both come back as ErrUnauthorized so
// the response never confirms whether an account exists.
func (s *AuthService) Issue(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !verifyPassword(password, user.PasswordHash) {
		return "", domain.ErrUnauthorized
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, token, user.ID, domain.SessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id owning the token, or ErrUnauthorized when the
// token is absent or expired.
func (s *AuthService) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}
	return userID, nil
}

// Revoke deletes the session. Revoking a token that has no session reports
// ErrUnauthorized so the caller can answer 401.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if _, err := s.sessions.Get(ctx, token); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("failed to resolve session: %w", err)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

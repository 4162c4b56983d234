package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/rs/zerolog/log"
)

// WelcomeProcessor runs the one-shot post-registration side effect.
type WelcomeProcessor struct {
	users domain.UserRepository
}

// NewWelcomeProcessor creates a welcome processor
func NewWelcomeProcessor(users domain.UserRepository) *WelcomeProcessor {
	return &WelcomeProcessor{users: users}
}

func (p *WelcomeProcessor) Process(ctx context.Context, job domain.Job) error {
	if job.Payload.UserID == "" {
		return Permanent(errors.New("missing userId"))
	}

	user, err := p.users.GetByID(ctx, job.Payload.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Registration is synchronous, so an absent user will not
			// appear later.
			return Permanent(fmt.Errorf("user not found: %s", job.Payload.UserID))
		}
		return fmt.Errorf("failed to resolve user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msgf("Welcome %s!", user.Email)
	return nil
}

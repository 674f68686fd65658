package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/models"
)

// SeedUser describes one account to provision together with its role profile.
type SeedUser struct {
	User     models.User
	Password string
	Profile  Profile
}

// SeedReport summarises a seeding run.
type SeedReport struct {
	Created []string
	Skipped []string
}

// SeedService provisions fixture accounts.
type SeedService interface {
	SeedUsers(ctx context.Context, users []SeedUser) (SeedReport, error)
}

type seedService struct {
	identity IdentityService
	logger   zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(identity IdentityService, logger zerolog.Logger) SeedService {
	return &seedService{
		identity: identity,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedUsers creates each user in order. Accounts whose e-mail is already registered are skipped and
// reported; any other failure stops the run.
func (s *seedService) SeedUsers(ctx context.Context, users []SeedUser) (SeedReport, error) {
	var report SeedReport
	for _, item := range users {
		user := item.User
		if err := s.identity.Create(ctx, &user, item.Password, item.Profile); err != nil {
			if errors.Is(err, ErrEmailTaken) {
				s.logger.Info().Str("email", user.Email).Msg("seed user already exists")
				report.Skipped = append(report.Skipped, user.Email)
				continue
			}
			return report, fmt.Errorf("seed %s: %w", user.Email, err)
		}
		report.Created = append(report.Created, user.Email)
	}
	s.logger.Info().Int("created", len(report.Created)).Int("skipped", len(report.Skipped)).Msg("users seeded")
	return report, nil
}

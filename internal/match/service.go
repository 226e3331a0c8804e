package match

import (
	"context"
	"strings"

	"github.com/parentlink/backend/internal/apperror"
	"github.com/parentlink/backend/internal/sanitize"
)

// defaultListLimit caps how many profiles a single listing returns.
const defaultListLimit = 50

// ProfileService defines the business logic contract for match profiles.
type ProfileService interface {
	Create(ctx context.Context, userID int64, req CreateProfileRequest) (*Profile, error)
	List(ctx context.Context, region string) ([]Profile, error)
}

// profileService implements ProfileService.
type profileService struct {
	repo ProfileRepository
}

// NewProfileService creates a new profile service.
func NewProfileService(repo ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

// Create validates and persists a new match profile.
func (s *profileService) Create(ctx context.Context, userID int64, req CreateProfileRequest) (*Profile, error) {
	region := strings.TrimSpace(req.Region)
	if region == "" {
		return nil, apperror.NewBadRequest("region is required")
	}
	if req.ChildAgeMonths < 0 {
		return nil, apperror.NewBadRequest("childAgeMonths must not be negative")
	}

	profile := &Profile{
		UserID:         userID,
		Region:         region,
		ChildAgeMonths: req.ChildAgeMonths,
		Bio:            sanitize.HTML(strings.TrimSpace(req.Bio)),
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, apperror.NewInternal(err)
	}

	return profile, nil
}

// List returns profiles, equality-filtered by region when one is given.
func (s *profileService) List(ctx context.Context, region string) ([]Profile, error) {
	profiles, err := s.repo.List(ctx, strings.TrimSpace(region), defaultListLimit)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return profiles, nil
}

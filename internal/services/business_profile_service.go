package services

import (
	"context"
	"fmt"

	"engineBack/internal/models"
	"engineBack/internal/repositories"
)

type BusinessProfileService struct {
	Repo *repositories.BusinessProfileRepository
}

func (s *BusinessProfileService) Create(ctx context.Context, p *models.BusinessProfile) (*models.BusinessProfile, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("business profile name is required")
	}
	if p.OrganizationID == "" {
		return nil, fmt.Errorf("organization id is required")
	}
	switch p.RiskLevel {
	case "":
		p.RiskLevel = models.RiskLevelLow
	case models.RiskLevelLow, models.RiskLevelMedium, models.RiskLevelHigh:
	default:
		return nil, fmt.Errorf("unknown risk level: %s", p.RiskLevel)
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BusinessProfileService) GetByID(ctx context.Context, profileID string) (*models.BusinessProfile, error) {
	return s.Repo.GetByID(ctx, profileID)
}

func (s *BusinessProfileService) ListByOrganization(ctx context.Context, orgID string, activeOnly bool) ([]models.BusinessProfile, error) {
	return s.Repo.ListByOrganization(ctx, orgID, activeOnly)
}

// Update rewrites mutable fields; organization id and id are fixed at
// creation.
func (s *BusinessProfileService) Update(ctx context.Context, p *models.BusinessProfile) (*models.BusinessProfile, error) {
	current, err := s.Repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, models.ErrProfileNotFound
	}
	p.OrganizationID = current.OrganizationID
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, p.ID)
}

// Deactivate soft-deletes the profile.
func (s *BusinessProfileService) Deactivate(ctx context.Context, profileID string) error {
	return s.Repo.Deactivate(ctx, profileID)
}

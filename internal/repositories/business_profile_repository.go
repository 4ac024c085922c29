package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engineBack/internal/models"
)

type BusinessProfileRepository struct {
	DB *sql.DB
}

const profileColumns = `id, organization_id, name, description, market, platforms, risk_level, compliance_flags, ai_providers, is_active, created_at, updated_at`

func scanProfile(scanner interface{ Scan(dest ...any) error }) (models.BusinessProfile, error) {
	var p models.BusinessProfile
	var description, market sql.NullString
	var platforms, flags, providers []byte
	var updatedAt sql.NullTime
	err := scanner.Scan(&p.ID, &p.OrganizationID, &p.Name, &description, &market, &platforms,
		&p.RiskLevel, &flags, &providers, &p.IsActive, &p.CreatedAt, &updatedAt)
	if err != nil {
		return models.BusinessProfile{}, err
	}
	if description.Valid {
		s := description.String
		p.Description = &s
	}
	if market.Valid {
		s := market.String
		p.Market = &s
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		p.UpdatedAt = &t
	}
	if len(platforms) > 0 {
		if err := json.Unmarshal(platforms, &p.Platforms); err != nil {
			return models.BusinessProfile{}, fmt.Errorf("decode platforms: %w", err)
		}
	}
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &p.ComplianceFlags); err != nil {
			return models.BusinessProfile{}, fmt.Errorf("decode compliance flags: %w", err)
		}
	}
	if len(providers) > 0 {
		if err := json.Unmarshal(providers, &p.AIProviders); err != nil {
			return models.BusinessProfile{}, fmt.Errorf("decode ai providers: %w", err)
		}
	}
	return p, nil
}

func (r *BusinessProfileRepository) GetByID(ctx context.Context, profileID string) (*models.BusinessProfile, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM business_profiles WHERE id = $1`, profileID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business profile: %w", err)
	}
	return &p, nil
}

func (r *BusinessProfileRepository) ListByOrganization(ctx context.Context, orgID string, activeOnly bool) ([]models.BusinessProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM business_profiles WHERE organization_id = $1`
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("list business profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.BusinessProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *BusinessProfileRepository) Create(ctx context.Context, p *models.BusinessProfile) error {
	platforms, err := json.Marshal(p.Platforms)
	if err != nil {
		return fmt.Errorf("encode platforms: %w", err)
	}
	flags, err := json.Marshal(p.ComplianceFlags)
	if err != nil {
		return fmt.Errorf("encode compliance flags: %w", err)
	}
	providers, err := json.Marshal(p.AIProviders)
	if err != nil {
		return fmt.Errorf("encode ai providers: %w", err)
	}

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.IsActive = true
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO business_profiles (id, organization_id, name, description, market, platforms, risk_level, compliance_flags, ai_providers, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.OrganizationID, p.Name, p.Description, p.Market, platforms, p.RiskLevel, flags, providers, p.IsActive, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create business profile: %w", err)
	}
	return nil
}

// Update rewrites mutable profile fields. Organization and id never change
// after creation.
func (r *BusinessProfileRepository) Update(ctx context.Context, p *models.BusinessProfile) error {
	platforms, err := json.Marshal(p.Platforms)
	if err != nil {
		return fmt.Errorf("encode platforms: %w", err)
	}
	flags, err := json.Marshal(p.ComplianceFlags)
	if err != nil {
		return fmt.Errorf("encode compliance flags: %w", err)
	}
	providers, err := json.Marshal(p.AIProviders)
	if err != nil {
		return fmt.Errorf("encode ai providers: %w", err)
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE business_profiles SET name = $1, description = $2, market = $3, platforms = $4, risk_level = $5, compliance_flags = $6, ai_providers = $7, updated_at = now()
		 WHERE id = $8`,
		p.Name, p.Description, p.Market, platforms, p.RiskLevel, flags, providers, p.ID)
	if err != nil {
		return fmt.Errorf("update business profile: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrProfileNotFound
	}
	return nil
}

// Deactivate soft-deletes a profile. Profiles are never hard-deleted.
func (r *BusinessProfileRepository) Deactivate(ctx context.Context, profileID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE business_profiles SET is_active = false, updated_at = now() WHERE id = $1`, profileID)
	if err != nil {
		return fmt.Errorf("deactivate business profile: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrProfileNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
)

type ContentPackRepository struct {
	DB *sql.DB
}

const packColumns = `id, business_profile_id, created_by, title, description, content_type, content_data, metadata, status, created_at, updated_at, approved_at, approved_by`

func scanPack(scanner interface{ Scan(dest ...any) error }) (models.ContentPack, error) {
	var p models.ContentPack
	var description, approvedBy sql.NullString
	var contentData, metadata []byte
	var updatedAt, approvedAt sql.NullTime
	err := scanner.Scan(&p.ID, &p.BusinessProfileID, &p.CreatedBy, &p.Title, &description, &p.ContentType,
		&contentData, &metadata, &p.Status, &p.CreatedAt, &updatedAt, &approvedAt, &approvedBy)
	if err != nil {
		return models.ContentPack{}, err
	}
	if description.Valid {
		s := description.String
		p.Description = &s
	}
	if approvedBy.Valid {
		s := approvedBy.String
		p.ApprovedBy = &s
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		p.UpdatedAt = &t
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		p.ApprovedAt = &t
	}
	if len(contentData) > 0 {
		if err := json.Unmarshal(contentData, &p.ContentData); err != nil {
			return models.ContentPack{}, fmt.Errorf("decode content data: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return models.ContentPack{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return p, nil
}

func (r *ContentPackRepository) GetByID(ctx context.Context, packID string) (*models.ContentPack, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+packColumns+` FROM content_packs WHERE id = $1`, packID)
	p, err := scanPack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content pack: %w", err)
	}
	return &p, nil
}

// ListForProfile returns packs for a profile, newest first, optionally
// filtered by status.
func (r *ContentPackRepository) ListForProfile(ctx context.Context, profileID, status string) ([]models.ContentPack, error) {
	query := `SELECT ` + packColumns + ` FROM content_packs WHERE business_profile_id = $1`
	args := []any{profileID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content packs: %w", err)
	}
	defer rows.Close()

	var packs []models.ContentPack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

func (r *ContentPackRepository) Create(ctx context.Context, p *models.ContentPack) error {
	contentData, err := json.Marshal(p.ContentData)
	if err != nil {
		return fmt.Errorf("encode content data: %w", err)
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	p.ID = uuid.NewString()
	p.Status = fsm.StateDraft
	p.CreatedAt = time.Now().UTC()
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO content_packs (id, business_profile_id, created_by, title, description, content_type, content_data, metadata, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.BusinessProfileID, p.CreatedBy, p.Title, p.Description, p.ContentType, contentData, metadata, p.Status, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create content pack: %w", err)
	}
	return nil
}

// Update rewrites draft-editable fields. The status guard lives in the
// service; the WHERE clause keeps it honest under concurrency.
func (r *ContentPackRepository) Update(ctx context.Context, packID string, upd models.ContentPackUpdate) (*models.ContentPack, error) {
	current, err := r.GetByID(ctx, packID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, models.ErrPackNotFound
	}

	if upd.Title != nil {
		current.Title = *upd.Title
	}
	if upd.Description != nil {
		current.Description = upd.Description
	}
	if upd.ContentData != nil {
		current.ContentData = upd.ContentData
	}
	if upd.Metadata != nil {
		current.Metadata = upd.Metadata
	}

	contentData, err := json.Marshal(current.ContentData)
	if err != nil {
		return nil, fmt.Errorf("encode content data: %w", err)
	}
	metadata, err := json.Marshal(current.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE content_packs SET title = $1, description = $2, content_data = $3, metadata = $4, updated_at = now()
		 WHERE id = $5 AND status = $6`,
		current.Title, current.Description, contentData, metadata, packID, fsm.StateDraft)
	if err != nil {
		return nil, fmt.Errorf("update content pack: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.ErrPackNotEditable
	}
	return r.GetByID(ctx, packID)
}

func (r *ContentPackRepository) Delete(ctx context.Context, packID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM content_packs WHERE id = $1 AND status = $2`, packID, fsm.StateDraft)
	if err != nil {
		return fmt.Errorf("delete content pack: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrPackNotDeletable
	}
	return nil
}

// OrganizationIDForPack follows pack -> business profile -> organization.
func (r *ContentPackRepository) OrganizationIDForPack(ctx context.Context, packID string) (string, error) {
	var orgID string
	err := r.DB.QueryRowContext(ctx,
		`SELECT bp.organization_id FROM content_packs cp
		 JOIN business_profiles bp ON bp.id = cp.business_profile_id
		 WHERE cp.id = $1`,
		packID).Scan(&orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrPackNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve pack organization: %w", err)
	}
	return orgID, nil
}

// PackStatsRow is the projection analytics needs per pack.
type PackStatsRow struct {
	Status      string
	ContentType string
	CreatedAt   time.Time
	ApprovedAt  *time.Time
}

// ListForStats returns the analytics projection for a profile's packs within
// an optional [start, end] creation window.
func (r *ContentPackRepository) ListForStats(ctx context.Context, profileID string, start, end *time.Time) ([]PackStatsRow, error) {
	query := `SELECT status, content_type, created_at, approved_at FROM content_packs WHERE business_profile_id = $1`
	args := []any{profileID}
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packs for stats: %w", err)
	}
	defer rows.Close()

	var out []PackStatsRow
	for rows.Next() {
		var row PackStatsRow
		var approvedAt sql.NullTime
		if err := rows.Scan(&row.Status, &row.ContentType, &row.CreatedAt, &approvedAt); err != nil {
			return nil, err
		}
		if approvedAt.Valid {
			t := approvedAt.Time
			row.ApprovedAt = &t
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

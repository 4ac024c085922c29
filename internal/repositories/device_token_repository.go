package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type DeviceTokenRepository struct {
	DB *sql.DB
}

// Upsert registers a device token for a user. Re-registering the same token
// moves it to the new user.
func (r *DeviceTokenRepository) Upsert(ctx context.Context, userID, token string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO device_tokens (user_id, token, created_at) VALUES ($1, $2, now())
		 ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id`,
		userID, token)
	if err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	return nil
}

func (r *DeviceTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete device token: %w", err)
	}
	return nil
}

// ListForUsers returns the tokens registered to any of the given users.
func (r *DeviceTokenRepository) ListForUsers(ctx context.Context, userIDs []string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT token FROM device_tokens WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// ListApproverTokens returns tokens for every admin in an organization, the
// audience for review notifications.
func (r *DeviceTokenRepository) ListApproverTokens(ctx context.Context, orgID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT dt.token FROM device_tokens dt
		 JOIN users u ON u.id = dt.user_id
		 WHERE u.organization_id = $1 AND u.role = 'admin'`,
		orgID)
	if err != nil {
		return nil, fmt.Errorf("list approver tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

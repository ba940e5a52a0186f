package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"invhub-rest-api/internal/domain"
)

// MySQLAccountRepository implements AccountRepository against the main users
// database. The API works without it (env-var API keys only); when wired it
// resolves callers to named accounts.
type MySQLAccountRepository struct {
	db *sql.DB
}

// NewMySQLAccountRepository creates a new MySQL account repository.
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

// GetAccountByAPIKey finds the active account that owns apiKey.
func (r *MySQLAccountRepository) GetAccountByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	query := `
		SELECT u.id, u.display_name, u.is_admin
		FROM users u
		JOIN api_keys k ON k.user_id = u.id
		WHERE k.api_key = ? AND k.is_active = 1 AND u.is_blocked = 0
		LIMIT 1`

	var acc domain.Account
	err := r.db.QueryRowContext(ctx, query, apiKey).Scan(&acc.ID, &acc.DisplayName, &acc.IsAdmin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// TouchAPIKey updates the last-used timestamp for an API key. Best effort;
// callers ignore the error.
func (r *MySQLAccountRepository) TouchAPIKey(ctx context.Context, apiKey string) error {
	query := `UPDATE api_keys SET last_used_at = ? WHERE api_key = ?`

	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}

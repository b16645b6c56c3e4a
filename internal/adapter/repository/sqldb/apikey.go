package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// APIKeyRepository keeps the digest of the single API key in the one-row
// api_key table. Get reports an empty slot with entity.ErrAPIKeyNotFound.
type APIKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository returns an APIKeyRepository over db.
func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Get(ctx context.Context) (string, error) {
	const op = "adapter.repository.sqldb.APIKeyRepository.Get"
	const query = `SELECT digest FROM api_key WHERE id = 0`

	var digest string

	if err := r.db.GetContext(ctx, &digest, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrAPIKeyNotFound)
		}

		return "", fmt.Errorf("%s: failed to get row from api_key table: %w", op, err)
	}

	return digest, nil
}

// Put replaces the stored digest with digest.
func (r *APIKeyRepository) Put(ctx context.Context, digest string) error {
	const op = "adapter.repository.sqldb.APIKeyRepository.Put"
	query := r.db.Rebind(`INSERT INTO api_key(id, digest) VALUES (0, ?)
		ON CONFLICT (id) DO UPDATE SET digest = excluded.digest`)

	if _, err := r.db.ExecContext(ctx, query, digest); err != nil {
		return fmt.Errorf("%s: failed to upsert api_key table: %w", op, err)
	}

	return nil
}

func (r *APIKeyRepository) Clear(ctx context.Context) error {
	const op = "adapter.repository.sqldb.APIKeyRepository.Clear"
	const query = `DELETE FROM api_key`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: failed to delete from api_key table: %w", op, err)
	}

	return nil
}

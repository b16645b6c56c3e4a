package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type linkDB struct {
	ShortCode string `db:"short_code"`
	LongURL   string `db:"long_url"`
	Hits      int64  `db:"hits"`
}

func (l *linkDB) toEntity() *entity.Link {
	return &entity.Link{
		ShortCode: l.ShortCode,
		LongURL:   l.LongURL,
		HitCount:  l.Hits,
	}
}

// LinkRepository stores links in the links table. Insert reports a taken code
// with entity.ErrShortCodeExists; Find, UpdateURL, Delete and IncrementHits
// report a missing code with entity.ErrLinkNotFound.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository returns a LinkRepository over db, which may be a
// PostgreSQL or a SQLite pool.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Find(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.sqldb.LinkRepository.Find"
	query := r.db.Rebind(`SELECT short_code, long_url, hits FROM links WHERE short_code = ?`)

	var link linkDB

	if err := r.db.GetContext(ctx, &link, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	return link.toEntity(), nil
}

// List returns every link in insertion order, never nil.
func (r *LinkRepository) List(ctx context.Context) ([]entity.Link, error) {
	const op = "adapter.repository.sqldb.LinkRepository.List"
	const query = `SELECT short_code, long_url, hits FROM links ORDER BY id`

	var rows []linkDB

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from links table: %w", op, err)
	}

	links := make([]entity.Link, 0, len(rows))
	for i := range rows {
		links = append(links, *rows[i].toEntity())
	}

	return links, nil
}

func (r *LinkRepository) Insert(ctx context.Context, shortCode, longURL string) error {
	const op = "adapter.repository.sqldb.LinkRepository.Insert"
	query := r.db.Rebind(`INSERT INTO links(short_code, long_url) VALUES (?, ?)`)

	if _, err := r.db.ExecContext(ctx, query, shortCode, longURL); err != nil {
		if isUniqueViolationError(err) {
			return fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return fmt.Errorf("%s: failed to insert into links table: %w", op, err)
	}

	return nil
}

func (r *LinkRepository) UpdateURL(ctx context.Context, shortCode, longURL string) error {
	const op = "adapter.repository.sqldb.LinkRepository.UpdateURL"
	query := r.db.Rebind(`UPDATE links SET long_url = ? WHERE short_code = ?`)

	return r.execOne(ctx, op, query, longURL, shortCode)
}

func (r *LinkRepository) Delete(ctx context.Context, shortCode string) error {
	const op = "adapter.repository.sqldb.LinkRepository.Delete"
	query := r.db.Rebind(`DELETE FROM links WHERE short_code = ?`)

	return r.execOne(ctx, op, query, shortCode)
}

func (r *LinkRepository) IncrementHits(ctx context.Context, shortCode string) error {
	const op = "adapter.repository.sqldb.LinkRepository.IncrementHits"
	query := r.db.Rebind(`UPDATE links SET hits = hits + 1 WHERE short_code = ?`)

	return r.execOne(ctx, op, query, shortCode)
}

// execOne runs a statement expected to touch exactly one row.
func (r *LinkRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to modify links table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return nil
}

package recommendation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	liteSelectColumns = `SELECT id, name, youtube_link, score FROM recommendations`

	liteFindByIDQuery   = liteSelectColumns + ` WHERE id = ?`
	liteFindByNameQuery = liteSelectColumns + ` WHERE name = ?`
	liteFindAllQuery    = liteSelectColumns + ` ORDER BY id`
	liteFindRecentQuery = liteSelectColumns + ` ORDER BY id DESC LIMIT ?`
	liteTopByScoreQuery = liteSelectColumns + ` ORDER BY score DESC, id ASC LIMIT ?`

	liteCreateQuery = `INSERT INTO recommendations (name, youtube_link, score) VALUES (?, ?, ?)
        RETURNING id, name, youtube_link, score`
	liteUpdateScoreQuery = `UPDATE recommendations SET score = score + ? WHERE id = ?
        RETURNING id, name, youtube_link, score`
	liteRemoveQuery = `DELETE FROM recommendations WHERE id = ?`
)

// SQLiteRepository implements Repository for local SQLite files and remote
// libSQL databases.
type SQLiteRepository struct {
	db *sqlx.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (*Recommendation, error) {
	return r.get(ctx, "find recommendation by id", liteFindByIDQuery, id)
}

func (r *SQLiteRepository) FindByName(ctx context.Context, name string) (*Recommendation, error) {
	return r.get(ctx, "find recommendation by name", liteFindByNameQuery, name)
}

func (r *SQLiteRepository) FindAll(ctx context.Context) ([]Recommendation, error) {
	return r.selectMany(ctx, "list recommendations", liteFindAllQuery)
}

func (r *SQLiteRepository) FindRecent(ctx context.Context, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		return []Recommendation{}, nil
	}
	return r.selectMany(ctx, "list recent recommendations", liteFindRecentQuery, limit)
}

func (r *SQLiteRepository) TopByScore(ctx context.Context, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		return []Recommendation{}, nil
	}
	return r.selectMany(ctx, "list top recommendations", liteTopByScoreQuery, limit)
}

func (r *SQLiteRepository) Create(ctx context.Context, rec Recommendation) (*Recommendation, error) {
	var out Recommendation
	err := r.db.QueryRowxContext(ctx, liteCreateQuery, rec.Name, rec.YoutubeLink, rec.Score).StructScan(&out)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create recommendation: %w", err)
	}
	return &out, nil
}

func (r *SQLiteRepository) UpdateScore(ctx context.Context, id int64, delta int) (*Recommendation, error) {
	var out Recommendation
	err := r.db.QueryRowxContext(ctx, liteUpdateScoreQuery, delta, id).StructScan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update recommendation score: %w", err)
	}
	return &out, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, liteRemoveQuery, id); err != nil {
		return fmt.Errorf("remove recommendation %d: %w", id, err)
	}
	return nil
}

// Reset empties the table and restarts the AUTOINCREMENT counter.
func (r *SQLiteRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reset recommendations: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations`); err != nil {
		return fmt.Errorf("reset recommendations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'recommendations'`); err != nil {
		return fmt.Errorf("reset recommendation ids: %w", err)
	}
	return tx.Commit()
}

func (r *SQLiteRepository) get(ctx context.Context, op, query string, args ...any) (*Recommendation, error) {
	var rec Recommendation
	err := r.db.GetContext(ctx, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) selectMany(ctx context.Context, op, query string, args ...any) ([]Recommendation, error) {
	out := make([]Recommendation, 0)
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

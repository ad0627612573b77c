package recommendation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE Postgres reports for a broken unique constraint.
const uniqueViolation = "23505"

const (
	pgSelectColumns = `SELECT id, name, youtube_link, score FROM recommendations`

	pgFindByIDQuery   = pgSelectColumns + ` WHERE id = $1`
	pgFindByNameQuery = pgSelectColumns + ` WHERE name = $1`
	pgFindAllQuery    = pgSelectColumns + ` ORDER BY id`
	pgFindRecentQuery = pgSelectColumns + ` ORDER BY id DESC LIMIT $1`
	pgTopByScoreQuery = pgSelectColumns + ` ORDER BY score DESC, id ASC LIMIT $1`

	pgCreateQuery = `
        INSERT INTO recommendations (name, youtube_link, score)
        VALUES ($1, $2, $3)
        RETURNING id, name, youtube_link, score
    `
	pgUpdateScoreQuery = `
        UPDATE recommendations SET score = score + $1
        WHERE id = $2
        RETURNING id, name, youtube_link, score
    `
	pgRemoveQuery = `DELETE FROM recommendations WHERE id = $1`
	pgResetQuery  = `TRUNCATE TABLE recommendations RESTART IDENTITY`
)

// PostgresRepository implements Repository using Postgres through database/sql.
// It works with both the pgx and lib/pq drivers.
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*Recommendation, error) {
	return r.queryOne(ctx, "find recommendation by id", pgFindByIDQuery, id)
}

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*Recommendation, error) {
	return r.queryOne(ctx, "find recommendation by name", pgFindByNameQuery, name)
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]Recommendation, error) {
	return r.queryMany(ctx, "list recommendations", pgFindAllQuery)
}

func (r *PostgresRepository) FindRecent(ctx context.Context, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		return []Recommendation{}, nil
	}
	return r.queryMany(ctx, "list recent recommendations", pgFindRecentQuery, limit)
}

func (r *PostgresRepository) TopByScore(ctx context.Context, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		return []Recommendation{}, nil
	}
	return r.queryMany(ctx, "list top recommendations", pgTopByScoreQuery, limit)
}

func (r *PostgresRepository) Create(ctx context.Context, rec Recommendation) (*Recommendation, error) {
	var out Recommendation
	err := r.db.QueryRowContext(ctx, pgCreateQuery, rec.Name, rec.YoutubeLink, rec.Score).
		Scan(&out.ID, &out.Name, &out.YoutubeLink, &out.Score)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create recommendation: %w", err)
	}
	return &out, nil
}

func (r *PostgresRepository) UpdateScore(ctx context.Context, id int64, delta int) (*Recommendation, error) {
	return r.queryOne(ctx, "update recommendation score", pgUpdateScoreQuery, delta, id)
}

func (r *PostgresRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, pgRemoveQuery, id); err != nil {
		return fmt.Errorf("remove recommendation %d: %w", id, err)
	}
	return nil
}

// Reset empties the table and restarts the id sequence.
func (r *PostgresRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, pgResetQuery); err != nil {
		return fmt.Errorf("reset recommendations: %w", err)
	}
	return nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, op, query string, args ...any) (*Recommendation, error) {
	var rec Recommendation
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &rec.Name, &rec.YoutubeLink, &rec.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, op, query string, args ...any) ([]Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]Recommendation, 0)
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.YoutubeLink, &rec.Score); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// isUniqueViolation recognises the error shape of both supported drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

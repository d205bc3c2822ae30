package rating

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (repo *PostgresRepo) Upsert(ctx context.Context, rec *Rating) error {
	const query = `
		INSERT INTO user_ratings (user_id, book_id, rating, source, import_batch_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), now(), now())
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET
			rating = EXCLUDED.rating,
			source = EXCLUDED.source,
			import_batch_id = EXCLUDED.import_batch_id,
			updated_at = now()
		RETURNING created_at, updated_at`

	return repo.db.QueryRow(ctx, query, rec.UserID, rec.BookID, rec.Rating, rec.Source, rec.ImportBatchID).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (repo *PostgresRepo) Get(ctx context.Context, userID, bookID string) (Rating, error) {
	const query = `
		SELECT user_id, book_id, rating, source, COALESCE(import_batch_id::text, ''), created_at, updated_at
		FROM user_ratings
		WHERE user_id = $1 AND book_id = $2
		LIMIT 1`

	var rec Rating
	err := repo.db.QueryRow(ctx, query, userID, bookID).Scan(
		&rec.UserID, &rec.BookID, &rec.Rating, &rec.Source, &rec.ImportBatchID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rating{}, ErrNotFound
		}
		return Rating{}, err
	}
	return rec, nil
}

func (repo *PostgresRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := repo.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_ratings WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const bookColumns = `id, COALESCE(isbn13, ''), title, authors, COALESCE(cover_url, ''), metadata, created_at, updated_at`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.ISBN13, &b.Title, &b.Authors, &b.CoverURL, &b.Metadata, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1 LIMIT 1`, bookColumns)
	return scanBook(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepo) GetByISBN13(ctx context.Context, isbn13 string) (Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE isbn13 = $1 LIMIT 1`, bookColumns)
	return scanBook(r.db.QueryRow(ctx, query, isbn13))
}

func (r *PostgresRepo) FindByTitleAuthor(ctx context.Context, title, author string) (Book, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM books
		WHERE lower(title) = lower($1) AND $2 = ANY(authors)
		LIMIT 1`, bookColumns)
	return scanBook(r.db.QueryRow(ctx, query, title, author))
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	// NULLIF keeps the unique index on isbn13 off the empty-string value.
	// The conflict branch makes creation idempotent for ISBN-carrying rows:
	// a concurrent or retried insert lands on the existing record.
	const query = `
		INSERT INTO books (id, isbn13, title, authors, cover_url, metadata)
		VALUES (gen_random_uuid(), NULLIF($1, ''), $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (isbn13) DO UPDATE SET updated_at = now()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, b.ISBN13, b.Title, b.Authors, b.CoverURL, b.Metadata).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

package book

import (
	"context"

	"shelfrate/internal/platform/openlibrary"
)

// Repository defines the contract for book storage.
type Repository interface {
	GetByID(ctx context.Context, id string) (Book, error)
	GetByISBN13(ctx context.Context, isbn13 string) (Book, error)
	// FindByTitleAuthor matches on case-insensitive exact title plus
	// author-list membership. Returns ErrNotFound on miss.
	FindByTitleAuthor(ctx context.Context, title, author string) (Book, error)
	// Create inserts b and fills in ID and timestamps. When b.ISBN13 is set
	// the insert upserts on the ISBN so a retried creation resolves to the
	// existing row instead of erroring.
	Create(ctx context.Context, b *Book) error
}

// CatalogClient is the slice of the Open Library client the service needs.
type CatalogClient interface {
	Search(ctx context.Context, q openlibrary.SearchQuery, limit int) ([]openlibrary.Candidate, error)
	LookupByISBN(ctx context.Context, isbn13 string) (*openlibrary.BookData, error)
}

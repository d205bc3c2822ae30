package book

import (
	"context"
	"errors"

	"shelfrate/internal/platform/openlibrary"
)

const searchLimit = 20

// Service provides book lookup and resolution logic.
type Service struct {
	repo    Repository
	catalog CatalogClient
}

// NewService creates a new book service.
func NewService(repo Repository, catalog CatalogClient) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// GetByID returns a book by its internal id.
func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// LookupByISBN returns the local book for a normalized ISBN-13, falling back
// to Open Library and creating the record on first reference.
func (s *Service) LookupByISBN(ctx context.Context, isbn13 string) (Book, error) {
	b, err := s.repo.GetByISBN13(ctx, isbn13)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Book{}, err
	}

	data, err := s.catalog.LookupByISBN(ctx, isbn13)
	if err != nil {
		if errors.Is(err, openlibrary.ErrNotFound) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}

	created := Book{
		ISBN13:   data.ISBN13,
		Title:    data.Title,
		Authors:  data.Authors,
		CoverURL: data.CoverURL,
		Metadata: data.Raw,
	}
	if created.Authors == nil {
		created.Authors = []string{}
	}
	if err := s.repo.Create(ctx, &created); err != nil {
		return Book{}, err
	}
	return created, nil
}

// Search proxies a catalog search without touching local storage.
func (s *Service) Search(ctx context.Context, q openlibrary.SearchQuery) ([]openlibrary.Candidate, error) {
	return s.catalog.Search(ctx, q, searchLimit)
}

// Resolve finds the book an import row refers to, creating it on first
// reference. Resolution prefers the exact ISBN match; rows without a usable
// ISBN fall back to case-insensitive title plus author membership.
func (s *Service) Resolve(ctx context.Context, title, author, isbn13 string) (Book, error) {
	var (
		b   Book
		err error
	)
	if isbn13 != "" {
		b, err = s.repo.GetByISBN13(ctx, isbn13)
	} else {
		b, err = s.repo.FindByTitleAuthor(ctx, title, author)
	}
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Book{}, err
	}

	created := Book{
		ISBN13:  isbn13,
		Title:   title,
		Authors: []string{author},
	}
	if err := s.repo.Create(ctx, &created); err != nil {
		return Book{}, err
	}
	return created, nil
}

package book

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shelfrate/internal/platform/openlibrary"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) GetByISBN13(ctx context.Context, isbn13 string) (Book, error) {
	args := m.Called(ctx, isbn13)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) FindByTitleAuthor(ctx context.Context, title, author string) (Book, error) {
	args := m.Called(ctx, title, author)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, b *Book) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil && b.ID == "" {
		b.ID = "created-id"
	}
	return args.Error(0)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Search(ctx context.Context, q openlibrary.SearchQuery, limit int) ([]openlibrary.Candidate, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]openlibrary.Candidate), args.Error(1)
}

func (m *mockCatalog) LookupByISBN(ctx context.Context, isbn13 string) (*openlibrary.BookData, error) {
	args := m.Called(ctx, isbn13)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openlibrary.BookData), args.Error(1)
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers isbn lookup", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, new(mockCatalog))

		existing := Book{ID: "book-1", ISBN13: "9780441013593", Title: "Dune"}
		repo.On("GetByISBN13", ctx, "9780441013593").Return(existing, nil)

		b, err := s.Resolve(ctx, "Dune", "Frank Herbert", "9780441013593")

		require.NoError(t, err)
		assert.Equal(t, "book-1", b.ID)
		repo.AssertNotCalled(t, "FindByTitleAuthor", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to title and author without isbn", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, new(mockCatalog))

		existing := Book{ID: "book-2", Title: "Dune"}
		repo.On("FindByTitleAuthor", ctx, "Dune", "Frank Herbert").Return(existing, nil)

		b, err := s.Resolve(ctx, "Dune", "Frank Herbert", "")

		require.NoError(t, err)
		assert.Equal(t, "book-2", b.ID)
		repo.AssertNotCalled(t, "GetByISBN13", mock.Anything, mock.Anything)
	})

	t.Run("creates on miss", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, new(mockCatalog))

		repo.On("GetByISBN13", ctx, "9780441013593").Return(Book{}, ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(b *Book) bool {
			return b.Title == "Dune" && b.ISBN13 == "9780441013593" &&
				len(b.Authors) == 1 && b.Authors[0] == "Frank Herbert"
		})).Return(nil)

		b, err := s.Resolve(ctx, "Dune", "Frank Herbert", "9780441013593")

		require.NoError(t, err)
		assert.Equal(t, "created-id", b.ID)
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, new(mockCatalog))

		repo.On("FindByTitleAuthor", ctx, "Dune", "Frank Herbert").
			Return(Book{}, fmt.Errorf("db down"))

		_, err := s.Resolve(ctx, "Dune", "Frank Herbert", "")

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_LookupByISBN(t *testing.T) {
	ctx := context.Background()

	t.Run("local hit skips catalog", func(t *testing.T) {
		repo := new(mockRepo)
		catalog := new(mockCatalog)
		s := NewService(repo, catalog)

		existing := Book{ID: "book-1", ISBN13: "9780441013593"}
		repo.On("GetByISBN13", ctx, "9780441013593").Return(existing, nil)

		b, err := s.LookupByISBN(ctx, "9780441013593")

		require.NoError(t, err)
		assert.Equal(t, "book-1", b.ID)
		catalog.AssertNotCalled(t, "LookupByISBN", mock.Anything, mock.Anything)
	})

	t.Run("catalog miss is not found", func(t *testing.T) {
		repo := new(mockRepo)
		catalog := new(mockCatalog)
		s := NewService(repo, catalog)

		repo.On("GetByISBN13", ctx, "9780000000002").Return(Book{}, ErrNotFound)
		catalog.On("LookupByISBN", ctx, "9780000000002").Return(nil, openlibrary.ErrNotFound)

		_, err := s.LookupByISBN(ctx, "9780000000002")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("catalog hit is created locally", func(t *testing.T) {
		repo := new(mockRepo)
		catalog := new(mockCatalog)
		s := NewService(repo, catalog)

		repo.On("GetByISBN13", ctx, "9780441013593").Return(Book{}, ErrNotFound)
		catalog.On("LookupByISBN", ctx, "9780441013593").Return(&openlibrary.BookData{
			ISBN13:   "9780441013593",
			Title:    "Dune",
			Authors:  []string{"Frank Herbert"},
			CoverURL: "https://covers.openlibrary.org/b/id/1-M.jpg",
		}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(b *Book) bool {
			return b.Title == "Dune" && b.CoverURL != ""
		})).Return(nil)

		b, err := s.LookupByISBN(ctx, "9780441013593")

		require.NoError(t, err)
		assert.Equal(t, "created-id", b.ID)
		repo.AssertExpectations(t)
	})
}

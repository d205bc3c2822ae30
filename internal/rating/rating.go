package rating

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the caller has no rating for the book.
var ErrNotFound = errors.New("rating not found")

// Rating sources.
const (
	SourceManual = "manual"
	SourceImport = "import"
)

// Rating is one user's rating of one book. At most one row exists per
// (user, book) pair; writes overwrite.
type Rating struct {
	UserID        string    `json:"user_id"`
	BookID        string    `json:"book_id"`
	Rating        float64   `json:"rating"`
	Source        string    `json:"source"`
	ImportBatchID string    `json:"import_batch_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Repository interface {
	Upsert(ctx context.Context, r *Rating) error
	Get(ctx context.Context, userID, bookID string) (Rating, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Rate upserts a manual rating for (userID, bookID).
func (s *Service) Rate(ctx context.Context, userID, bookID string, value float64) (Rating, error) {
	rec := Rating{
		UserID: userID,
		BookID: bookID,
		Rating: value,
		Source: SourceManual,
	}
	if err := s.repo.Upsert(ctx, &rec); err != nil {
		return Rating{}, err
	}
	return rec, nil
}

// Get returns the caller's rating for a book.
func (s *Service) Get(ctx context.Context, userID, bookID string) (Rating, error) {
	return s.repo.Get(ctx, userID, bookID)
}

// CountByUser returns how many books the user has rated.
func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

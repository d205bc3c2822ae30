// Package predict exposes the rating-prediction endpoint. The model itself is
// not built yet; the endpoint answers with the trivial cases and an explicit
// not-implemented rationale otherwise.
package predict

import (
	"context"
	"errors"
	"fmt"

	"shelfrate/internal/book"
	"shelfrate/internal/rating"
)

// minRatingsForPrediction is the smallest history a prediction could ever be
// grounded on.
const minRatingsForPrediction = 5

type Rationale struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type Result struct {
	PredictedRating *float64    `json:"predictedRating"`
	Confidence      *float64    `json:"confidence"`
	Rationale       []Rationale `json:"rationale"`
}

// BookGetter is the slice of the book service the predictor needs.
type BookGetter interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
}

// RatingReader reads the caller's rating history.
type RatingReader interface {
	Get(ctx context.Context, userID, bookID string) (rating.Rating, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type Service struct {
	books   BookGetter
	ratings RatingReader
}

func NewService(books BookGetter, ratings RatingReader) *Service {
	return &Service{books: books, ratings: ratings}
}

// Predict returns the would-be rating for (userID, bookID).
func (s *Service) Predict(ctx context.Context, userID, bookID string) (Result, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return Result{}, err
	}

	existing, err := s.ratings.Get(ctx, userID, bookID)
	if err == nil {
		value := existing.Rating
		confidence := 1.0
		return Result{
			PredictedRating: &value,
			Confidence:      &confidence,
			Rationale: []Rationale{{
				Type:    "existing_rating",
				Message: "You have already rated this book",
			}},
		}, nil
	}
	if !errors.Is(err, rating.ErrNotFound) {
		return Result{}, err
	}

	count, err := s.ratings.CountByUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	if count < minRatingsForPrediction {
		return Result{
			Rationale: []Rationale{{
				Type: "insufficient_data",
				Message: fmt.Sprintf("Need at least %d rated books to make predictions. You have %d.",
					minRatingsForPrediction, count),
			}},
		}, nil
	}

	return Result{
		Rationale: []Rationale{{
			Type:    "not_implemented",
			Message: "Prediction algorithm not yet implemented",
		}},
	}, nil
}

package predict

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shelfrate/internal/book"
	"shelfrate/internal/httpx"
	"shelfrate/internal/rating"
	"shelfrate/internal/testutil"
)

type mockBooks struct {
	mock.Mock
}

func (m *mockBooks) GetByID(ctx context.Context, id string) (book.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(book.Book), args.Error(1)
}

type mockRatings struct {
	mock.Mock
}

func (m *mockRatings) Get(ctx context.Context, userID, bookID string) (rating.Rating, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Get(0).(rating.Rating), args.Error(1)
}

func (m *mockRatings) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestService_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("already rated", func(t *testing.T) {
		books := new(mockBooks)
		ratings := new(mockRatings)
		s := NewService(books, ratings)

		books.On("GetByID", ctx, "book-1").Return(book.Book{ID: "book-1"}, nil)
		ratings.On("Get", ctx, "user-1", "book-1").
			Return(rating.Rating{Rating: 4.5}, nil)

		result, err := s.Predict(ctx, "user-1", "book-1")

		require.NoError(t, err)
		require.NotNil(t, result.PredictedRating)
		assert.Equal(t, 4.5, *result.PredictedRating)
		require.NotNil(t, result.Confidence)
		assert.Equal(t, 1.0, *result.Confidence)
		require.Len(t, result.Rationale, 1)
		assert.Equal(t, "existing_rating", result.Rationale[0].Type)
	})

	t.Run("too few ratings", func(t *testing.T) {
		books := new(mockBooks)
		ratings := new(mockRatings)
		s := NewService(books, ratings)

		books.On("GetByID", ctx, "book-1").Return(book.Book{ID: "book-1"}, nil)
		ratings.On("Get", ctx, "user-1", "book-1").Return(rating.Rating{}, rating.ErrNotFound)
		ratings.On("CountByUser", ctx, "user-1").Return(2, nil)

		result, err := s.Predict(ctx, "user-1", "book-1")

		require.NoError(t, err)
		assert.Nil(t, result.PredictedRating)
		assert.Nil(t, result.Confidence)
		require.Len(t, result.Rationale, 1)
		assert.Equal(t, "insufficient_data", result.Rationale[0].Type)
		assert.Contains(t, result.Rationale[0].Message, "You have 2")
	})

	t.Run("enough history but no model", func(t *testing.T) {
		books := new(mockBooks)
		ratings := new(mockRatings)
		s := NewService(books, ratings)

		books.On("GetByID", ctx, "book-1").Return(book.Book{ID: "book-1"}, nil)
		ratings.On("Get", ctx, "user-1", "book-1").Return(rating.Rating{}, rating.ErrNotFound)
		ratings.On("CountByUser", ctx, "user-1").Return(12, nil)

		result, err := s.Predict(ctx, "user-1", "book-1")

		require.NoError(t, err)
		assert.Nil(t, result.PredictedRating)
		require.Len(t, result.Rationale, 1)
		assert.Equal(t, "not_implemented", result.Rationale[0].Type)
	})

	t.Run("unknown book", func(t *testing.T) {
		books := new(mockBooks)
		ratings := new(mockRatings)
		s := NewService(books, ratings)

		books.On("GetByID", ctx, "ghost").Return(book.Book{}, book.ErrNotFound)

		_, err := s.Predict(ctx, "user-1", "ghost")

		assert.ErrorIs(t, err, book.ErrNotFound)
		ratings.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHTTPHandler_Predict(t *testing.T) {
	t.Run("unknown book is 404", func(t *testing.T) {
		books := new(mockBooks)
		handler := NewHTTPHandler(NewService(books, new(mockRatings)))

		books.On("GetByID", mock.Anything, "ghost").Return(book.Book{}, book.ErrNotFound)

		r := testutil.NewRequest(http.MethodPost, "/predict", map[string]any{"bookId": "ghost"})
		r = r.WithContext(httpx.ContextWithUser(r.Context(), "user-1", "USER"))
		w := httptest.NewRecorder()

		handler.Predict(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing bookId", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(new(mockBooks), new(mockRatings)))

		r := testutil.NewRequest(http.MethodPost, "/predict", map[string]any{})
		r = r.WithContext(httpx.ContextWithUser(r.Context(), "user-1", "USER"))
		w := httptest.NewRecorder()

		handler.Predict(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no identity", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(new(mockBooks), new(mockRatings)))

		r := testutil.NewRequest(http.MethodPost, "/predict", map[string]any{"bookId": "book-1"})
		w := httptest.NewRecorder()

		handler.Predict(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		books := new(mockBooks)
		ratings := new(mockRatings)
		handler := NewHTTPHandler(NewService(books, ratings))

		books.On("GetByID", mock.Anything, "book-1").Return(book.Book{ID: "book-1"}, nil)
		ratings.On("Get", mock.Anything, "user-1", "book-1").
			Return(rating.Rating{Rating: 3.5}, nil)

		r := testutil.NewRequest(http.MethodPost, "/predict", map[string]any{"bookId": "book-1"})
		r = r.WithContext(httpx.ContextWithUser(r.Context(), "user-1", "USER"))
		w := httptest.NewRecorder()

		handler.Predict(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, 3.5, data["predictedRating"])
	})
}

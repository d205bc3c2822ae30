package importer

import (
	"context"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"shelfrate/internal/book"
	"shelfrate/internal/normalize"
	"shelfrate/internal/rating"
)

// BatchRepository persists batch handles and their pending payloads.
type BatchRepository interface {
	Create(ctx context.Context, b *Batch, raw RawData) error
	// GetPending returns the batch and payload only when the batch exists,
	// belongs to userID, and is still pending; every other case is
	// ErrNotFound.
	GetPending(ctx context.Context, id, userID string) (Batch, RawData, error)
	// Finalize flips pending -> committed, stores the mapping and tally, and
	// discards the payload, all in one transaction guarded by a
	// compare-and-swap on the status. ErrNotFound when the swap loses.
	Finalize(ctx context.Context, id, userID string, mapping ColumnMapping, stats Stats) error
}

// BookResolver resolves an import row to an existing or newly created book.
type BookResolver interface {
	Resolve(ctx context.Context, title, author, isbn13 string) (book.Book, error)
}

// RatingWriter upserts the per-(user, book) rating rows.
type RatingWriter interface {
	Upsert(ctx context.Context, r *rating.Rating) error
}

type Service struct {
	batches BatchRepository
	books   BookResolver
	ratings RatingWriter
}

func NewService(batches BatchRepository, books BookResolver, ratings RatingWriter) *Service {
	return &Service{batches: batches, books: books, ratings: ratings}
}

// Upload parses the CSV, persists a pending batch owned by userID, and
// returns a bounded preview.
func (s *Service) Upload(ctx context.Context, userID, filename string, file io.Reader) (Preview, error) {
	raw, err := parseCSV(file)
	if err != nil {
		return Preview{}, err
	}

	b := &Batch{
		UserID:   userID,
		Filename: filename,
		Status:   StatusPending,
	}
	if err := s.batches.Create(ctx, b, raw); err != nil {
		return Preview{}, err
	}

	previewRows := raw.Rows
	if len(previewRows) > MaxPreviewRows {
		previewRows = previewRows[:MaxPreviewRows]
	}

	return Preview{
		BatchID:   b.ID,
		Filename:  filename,
		Headers:   raw.Headers,
		Rows:      previewRows,
		TotalRows: len(raw.Rows),
	}, nil
}

// Commit replays the stored rows through the mapping and tallies the outcome.
// Row failures are isolated: a bad row is counted, never fatal.
func (s *Service) Commit(ctx context.Context, userID, batchID string, mapping ColumnMapping) (Stats, error) {
	b, raw, err := s.batches.GetPending(ctx, batchID, userID)
	if err != nil {
		return Stats{}, err
	}

	titleIdx := headerIndex(raw.Headers, mapping.Title)
	authorIdx := headerIndex(raw.Headers, mapping.Author)
	ratingIdx := headerIndex(raw.Headers, mapping.Rating)
	isbnIdx := headerIndex(raw.Headers, mapping.ISBN)

	if titleIdx == -1 || authorIdx == -1 || ratingIdx == -1 {
		return Stats{}, ErrInvalidMapping
	}

	stats := Stats{Total: len(raw.Rows)}

	for _, row := range raw.Rows {
		title := strings.TrimSpace(cell(row, titleIdx))
		author := strings.TrimSpace(cell(row, authorIdx))
		ratingStr := strings.TrimSpace(cell(row, ratingIdx))

		if title == "" || author == "" || ratingStr == "" {
			stats.Skipped++
			continue
		}

		// ParseFloat accepts "NaN" and "Inf"; those are as unusable as
		// garbage text, so they skip like any other unparseable cell.
		ratingNum, err := strconv.ParseFloat(ratingStr, 64)
		if err != nil || math.IsNaN(ratingNum) || math.IsInf(ratingNum, 0) {
			stats.Skipped++
			continue
		}

		value := normalize.Rating(ratingNum)
		isbn13 := normalize.ISBN(strings.TrimSpace(cell(row, isbnIdx)))

		resolved, err := s.books.Resolve(ctx, title, author, isbn13)
		if err != nil {
			log.Printf("import row error: batch_id=%s error=%v", b.ID, err)
			stats.Errors++
			continue
		}

		rec := rating.Rating{
			UserID:        userID,
			BookID:        resolved.ID,
			Rating:        value,
			Source:        rating.SourceImport,
			ImportBatchID: b.ID,
		}
		if err := s.ratings.Upsert(ctx, &rec); err != nil {
			log.Printf("import row error: batch_id=%s error=%v", b.ID, err)
			stats.Errors++
			continue
		}

		stats.Imported++
	}

	if err := s.batches.Finalize(ctx, batchID, userID, mapping, stats); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

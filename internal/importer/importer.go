// Package importer implements the CSV import pipeline: upload a file, map its
// columns to rating fields, then commit the batch row by row.
package importer

import (
	"errors"
	"time"
)

// Batch lifecycle. A batch is created pending with its raw payload stored in a
// separate payload table; committing consumes the payload and flips the status
// exactly once.
const (
	StatusPending   = "pending"
	StatusCommitted = "committed"
)

// MaxPreviewRows bounds the rows echoed back after upload. The full row set
// stays retrievable by batch id until commit.
const MaxPreviewRows = 20

var (
	// ErrParse covers empty and malformed uploads.
	ErrParse = errors.New("could not parse CSV file")
	// ErrInvalidMapping is returned when a required field maps to a header
	// the batch does not have.
	ErrInvalidMapping = errors.New("invalid column mapping")
	// ErrNotFound conflates missing, foreign-owned, and already-committed
	// batches so callers cannot probe other users' batches.
	ErrNotFound = errors.New("import batch not found")
)

// Batch is the persisted handle for one upload.
type Batch struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Filename  string         `json:"filename"`
	Status    string         `json:"status"`
	ColumnMap *ColumnMapping `json:"column_map,omitempty"`
	Stats     *Stats         `json:"stats,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// RawData is the parsed CSV payload held while a batch is pending.
type RawData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnMapping assigns CSV headers to the semantic fields. Title, Author and
// Rating are required; ISBN and Date are optional.
type ColumnMapping struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Rating string `json:"rating" validate:"required"`
	ISBN   string `json:"isbn,omitempty"`
	Date   string `json:"date,omitempty"`
}

// Stats is the per-batch commit tally.
type Stats struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Errors   int `json:"errors"`
	Skipped  int `json:"skipped"`
}

// Preview is the upload response: the batch handle plus a bounded slice of
// rows for the mapping UI.
type Preview struct {
	BatchID   string     `json:"batchId"`
	Filename  string     `json:"filename"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
}

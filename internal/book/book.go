package book

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book represents a catalog entry. ISBN13 is empty for books created from
// import rows that carried no usable ISBN.
type Book struct {
	ID        string          `json:"id"`
	ISBN13    string          `json:"isbn13,omitempty"`
	Title     string          `json:"title"`
	Authors   []string        `json:"authors"`
	CoverURL  string          `json:"cover_url,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

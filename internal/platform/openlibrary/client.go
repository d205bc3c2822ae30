// Package openlibrary wraps the Open Library REST API used for catalog search
// and ISBN lookup.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when Open Library has no record for the key.
var ErrNotFound = fmt.Errorf("openlibrary: not found")

const maxAuthorFetches = 5

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    "https://openlibrary.org",
		coversURL:  "https://covers.openlibrary.org",
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// SearchQuery carries the supported search parameters; Q takes precedence over
// the field-specific ones.
type SearchQuery struct {
	Q      string
	Title  string
	Author string
}

// Candidate is one search hit, trimmed to what the caller needs to pick a book.
type Candidate struct {
	ExternalID string   `json:"external_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	ISBN13     string   `json:"isbn13,omitempty"`
	CoverURL   string   `json:"cover_url,omitempty"`
}

// BookData is the hydrated result of an ISBN lookup.
type BookData struct {
	ISBN13   string
	Title    string
	Authors  []string
	CoverURL string
	Raw      json.RawMessage
}

// searchResponse matches search.json
type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key         string   `json:"key"`
		Title       string   `json:"title"`
		AuthorNames []string `json:"author_name"`
		ISBN        []string `json:"isbn"`
		CoverID     int      `json:"cover_i"`
	} `json:"docs"`
}

// editionResponse matches isbn/{isbn}.json
type editionResponse struct {
	Title   string `json:"title"`
	Authors []struct {
		Key string `json:"key"`
	} `json:"authors"`
	ISBN13 []string `json:"isbn_13"`
	ISBN10 []string `json:"isbn_10"`
	Covers []int    `json:"covers"`
}

// authorResponse matches authors/{key}.json
type authorResponse struct {
	Name string `json:"name"`
}

func (c *Client) Search(ctx context.Context, q SearchQuery, limit int) ([]Candidate, error) {
	params := url.Values{}
	if q.Q != "" {
		params.Set("q", q.Q)
	} else {
		if q.Title != "" {
			params.Set("title", q.Title)
		}
		if q.Author != "" {
			params.Set("author", q.Author)
		}
	}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("fields", "key,title,author_name,isbn,cover_i")

	u := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	var res searchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(res.Docs))
	for _, doc := range res.Docs {
		cand := Candidate{
			ExternalID: doc.Key,
			Title:      doc.Title,
			Authors:    doc.AuthorNames,
		}
		if cand.Authors == nil {
			cand.Authors = []string{}
		}
		// Prefer a 13-digit ISBN when the doc carries several forms.
		for _, isbn := range doc.ISBN {
			if len(isbn) == 13 {
				cand.ISBN13 = isbn
				break
			}
		}
		if doc.CoverID != 0 {
			cand.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, doc.CoverID)
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// LookupByISBN fetches the edition record for a normalized 13-digit ISBN and
// hydrates author names. Returns ErrNotFound when Open Library has no edition.
func (c *Client) LookupByISBN(ctx context.Context, isbn13 string) (*BookData, error) {
	u := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn13)

	raw, err := c.rawGet(ctx, u)
	if err != nil {
		return nil, err
	}

	var edition editionResponse
	if err := json.Unmarshal(raw, &edition); err != nil {
		return nil, fmt.Errorf("decode edition: %w", err)
	}

	data := &BookData{
		ISBN13: isbn13,
		Title:  edition.Title,
		Raw:    raw,
	}
	if data.Title == "" {
		data.Title = "Unknown Title"
	}
	if len(edition.ISBN13) > 0 {
		data.ISBN13 = edition.ISBN13[0]
	}
	if len(edition.Covers) > 0 {
		data.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, edition.Covers[0])
	}

	for i, a := range edition.Authors {
		if i >= maxAuthorFetches {
			break
		}
		name, err := c.authorName(ctx, a.Key)
		if err != nil {
			// Best effort; a missing author name never fails the lookup.
			continue
		}
		data.Authors = append(data.Authors, name)
	}

	return data, nil
}

func (c *Client) authorName(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(key, "/authors/")
	u := fmt.Sprintf("%s/authors/%s.json", c.baseURL, key)

	var res authorResponse
	if err := c.get(ctx, u, &res); err != nil {
		return "", err
	}
	if res.Name == "" {
		return "", fmt.Errorf("author %s has no name", key)
	}
	return res.Name, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	raw, err := c.rawGet(ctx, url)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func (c *Client) rawGet(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := readAll(resp)
		switch {
		case resp.StatusCode == http.StatusOK:
			return body, readErr
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

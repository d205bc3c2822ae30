package book

import (
	"errors"
	"net/http"

	"shelfrate/internal/httpx"
	"shelfrate/internal/normalize"
	"shelfrate/internal/platform/openlibrary"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// GetByID handles GET /books/{id}
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book id", nil)
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

type isbnParam struct {
	ISBN string `json:"isbn" validate:"required,isbn"`
}

// LookupByISBN handles GET /books/isbn/{isbn}
func (h *HTTPHandler) LookupByISBN(w http.ResponseWriter, r *http.Request) {
	param := isbnParam{ISBN: r.PathValue("isbn")}
	if validationErrors := httpx.ValidateStruct(param); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid ISBN format", validationErrors)
		return
	}

	isbn13 := normalize.ISBN(param.ISBN)
	if isbn13 == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid ISBN format", nil)
		return
	}

	b, err := h.service.LookupByISBN(r.Context(), isbn13)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

// Search handles GET /books/search
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := openlibrary.SearchQuery{
		Q:      query.Get("q"),
		Title:  query.Get("title"),
		Author: query.Get("author"),
	}

	if q.Q == "" && q.Title == "" && q.Author == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "At least one search parameter is required", nil)
		return
	}

	results, err := h.service.Search(r.Context(), q)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Catalog search failed", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{"results": results}, nil)
}

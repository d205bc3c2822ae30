package importer

import (
	"encoding/json"
	"errors"
	"net/http"

	"shelfrate/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Upload handles POST /import/csv. Expects a multipart form with a `file`
// field and responds with the batch preview.
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "No file provided", nil)
		return
	}
	defer file.Close()

	preview, err := h.service.Upload(r.Context(), userID, header.Filename, file)
	if err != nil {
		if errors.Is(err, ErrParse) {
			httpx.JSONError(w, r, http.StatusBadRequest, "PARSE_ERROR", "Failed to parse CSV file", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process CSV file", nil)
		return
	}

	httpx.JSONSuccess(w, r, preview, nil)
}

type commitReq struct {
	BatchID   string        `json:"batchId" validate:"required"`
	ColumnMap ColumnMapping `json:"columnMap"`
}

// Commit handles POST /import/commit.
func (h *HTTPHandler) Commit(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var req commitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	stats, err := h.service.Commit(r.Context(), userID, req.BatchID, req.ColumnMap)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Import batch not found or already processed", nil)
		case errors.Is(err, ErrInvalidMapping):
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_MAPPING", "Invalid column mapping", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to commit import", nil)
		}
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{
		"success": true,
		"stats":   stats,
	}, nil)
}

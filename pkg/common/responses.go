package common

import (
	"encoding/json"
	"net/http"

	apperrors "inventory-backend/pkg/errors"
)

// Response is the standard JSON envelope returned by every endpoint.
type Response struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message,omitempty"`
	Data        interface{}           `json:"data,omitempty"`
	Errors      []apperrors.FieldError `json:"errors,omitempty"`
	Pagination  *PageMeta             `json:"pagination,omitempty"`
	Filters     *ListFilters          `json:"filters,omitempty"`
	GeneratedAt string                `json:"generatedAt,omitempty"`
}

// ListFilters echoes the listing filters back to the client.
type ListFilters struct {
	Search    string `json:"search"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondData sends a success envelope wrapping data
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, Response{Success: true, Data: data})
}

// RespondError sends an error envelope with a message
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: false, Message: message})
}

// RespondValidationErrors sends a 400 with field-level details
func RespondValidationErrors(w http.ResponseWriter, fields []apperrors.FieldError) {
	RespondJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Errors:  fields,
	})
}

// ParseJSONBody parses JSON request body with size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return err
	}

	return nil
}

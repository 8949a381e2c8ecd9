package common

import (
	"net/http"
	"strconv"
)

// Listing defaults and bounds.
const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

// allowedSortFields is the whitelist of sortable product fields.
// Unrecognized values silently fall back to the default, matching the
// permissive contract the API has always exposed.
var allowedSortFields = map[string]bool{
	"name":      true,
	"price":     true,
	"quantity":  true,
	"createdAt": true,
}

// ListParams is the validated, strongly typed form of the raw listing
// query parameters. It is a pure function of the request.
type ListParams struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
	Search    string `json:"search"`
}

// DefaultListParams returns default listing parameters
func DefaultListParams() ListParams {
	return ListParams{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}
}

// ExtractListParams extracts listing parameters from the request,
// defaulting and clamping anything malformed or out of range.
func ExtractListParams(r *http.Request) ListParams {
	params := DefaultListParams()
	query := r.URL.Query()

	if page := query.Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := query.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > MaxLimit {
				l = MaxLimit
			}
			params.Limit = l
		}
	}

	if sortBy := query.Get("sortBy"); allowedSortFields[sortBy] {
		params.SortBy = sortBy
	}

	if query.Get("sortOrder") == "asc" {
		params.SortOrder = "asc"
	}

	params.Search = query.Get("search")

	return params
}

// Offset calculates the number of records to skip
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Filters returns the filter echo for the response envelope
func (p ListParams) Filters() *ListFilters {
	return &ListFilters{
		Search:    p.Search,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
	}
}

// PageMeta contains pagination details for the response envelope.
type PageMeta struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}

// BuildPageMeta builds pagination metadata for a listing response
func BuildPageMeta(params ListParams, total int) *PageMeta {
	totalPages := CalculateTotalPages(total, params.Limit)

	meta := &PageMeta{
		CurrentPage: params.Page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       params.Limit,
		HasNextPage: params.Page < totalPages,
		HasPrevPage: params.Page > 1,
	}

	if meta.HasNextPage {
		next := params.Page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevPage {
		prev := params.Page - 1
		meta.PrevPage = &prev
	}

	return meta
}

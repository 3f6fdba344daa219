package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// Response-only types owned by the transport layer.
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

// markerResponse is one map marker. The map client renders exactly one of
// these per site.
type markerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CheckCount  int       `json:"check_count"`
	LastChecked time.Time `json:"last_checked,omitempty"`
}

type markersResponse struct {
	Markers []markerResponse `json:"markers"`
	Count   int              `json:"count"`
}

type changeItemResponse struct {
	SiteID         string    `json:"site_id"`
	SiteName       string    `json:"site_name"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Notes          string    `json:"notes,omitempty"`
	Operator       string    `json:"operator,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type siteDetailResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	DisplayName string               `json:"display_name,omitempty"`
	Lat         float64              `json:"lat"`
	Lng         float64              `json:"lng"`
	Status      string               `json:"status"`
	Notes       string               `json:"notes,omitempty"`
	CheckCount  int                  `json:"check_count"`
	LastChecked time.Time            `json:"last_checked,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	History     []changeItemResponse `json:"history"`
}

type changesResponse struct {
	Changes []changeItemResponse `json:"changes"`
}

package domain

import (
	"errors"
	"time"
)

// SiteStatus represents the inspection state of a tracked site.
type SiteStatus string

const (
	StatusUnchecked SiteStatus = "unchecked"
	StatusOK        SiteStatus = "ok"
	StatusIssue     SiteStatus = "issue"
	StatusResolved  SiteStatus = "resolved"
)

// AllStatuses lists every recognized status value, in display order.
var AllStatuses = []SiteStatus{StatusUnchecked, StatusOK, StatusIssue, StatusResolved}

var ErrInvalidStatus = errors.New("invalid status value")
var ErrSiteNotFound = errors.New("site not found")
var ErrDuplicateSite = errors.New("site already exists")
var ErrForbidden = errors.New("access forbidden")
var ErrStoreUnavailable = errors.New("record store unavailable")

// Valid reports whether s is one of the recognized status values.
// Unrecognized values must be rejected before they reach the store.
func (s SiteStatus) Valid() bool {
	switch s {
	case StatusUnchecked, StatusOK, StatusIssue, StatusResolved:
		return true
	}
	return false
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid reports whether the coordinates fall in the WGS84 ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Site is the core aggregate: one trackable point of interest with a status.
// The external record store owns the authoritative copy; this service holds
// the working copy that the map is rendered from.
type Site struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	Name        string      `json:"name" bson:"name"`
	DisplayName string      `json:"display_name,omitempty" bson:"display_name,omitempty"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
	Status      SiteStatus  `json:"status" bson:"status"`
	Notes       string      `json:"notes,omitempty" bson:"notes,omitempty"`
	CheckCount  int         `json:"check_count" bson:"check_count"`
	LastChecked time.Time   `json:"last_checked,omitempty" bson:"last_checked,omitempty"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

package handler

import "time"

// statusCheckRequest is one operator status check as submitted by the map
// client. Seq is the client-assigned per-site sequence number used for
// last-write-wins ordering; clients that do not sequence requests may omit it.
type statusCheckRequest struct {
	SiteID    string    `json:"site_id"   validate:"required"`
	Status    string    `json:"status"    validate:"required,oneof=unchecked ok issue resolved"`
	Notes     string    `json:"notes"`
	Seq       int64     `json:"seq"       validate:"gte=0"`
	Timestamp time.Time `json:"timestamp"`
}

// checkResultResponse reports the outcome of a synchronously applied check.
// Applied is false when the check was superseded by a newer one for the same
// site; in that case Status carries the state the client should roll forward to.
type checkResultResponse struct {
	Applied        bool      `json:"applied"`
	SiteID         string    `json:"site_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

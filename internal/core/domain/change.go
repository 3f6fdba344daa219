package domain

import "time"

// StatusChange records a single applied status change on a site.
type StatusChange struct {
	ID             string     `json:"id" bson:"_id,omitempty"`
	SiteID         string     `json:"site_id" bson:"site_id"`
	SiteName       string     `json:"site_name" bson:"site_name"`
	PreviousStatus SiteStatus `json:"previous_status" bson:"previous_status"`
	NewStatus      SiteStatus `json:"new_status" bson:"new_status"`
	Notes          string     `json:"notes,omitempty" bson:"notes,omitempty"`
	Operator       string     `json:"operator,omitempty" bson:"operator,omitempty"`
	Timestamp      time.Time  `json:"timestamp" bson:"timestamp"`
}

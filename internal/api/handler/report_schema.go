package handler

import "time"

type statusCountResponse struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type reportSiteResponse struct {
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked,omitempty"`
}

type monthlyReportResponse struct {
	Year        int                   `json:"year"`
	Month       string                `json:"month"`
	GeneratedAt time.Time             `json:"generated_at"`
	TotalSites  int                   `json:"total_sites"`
	TotalChecks int                   `json:"total_checks"`
	Counts      []statusCountResponse `json:"counts"`
	Changes     []changeItemResponse  `json:"changes"`
	Sites       []reportSiteResponse  `json:"sites"`
}

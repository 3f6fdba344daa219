// Package airtable is a thin adapter over the hosted record store's REST API.
// The hosted base remains the authoritative copy of every site; this client
// covers exactly the operations the tracker needs: list all records, patch a
// single record's status, and create new records in batches.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
)

const (
	defaultBaseURL = "https://api.airtable.com/v0"
	defaultTimeout = 10 * time.Second
	pageSize       = 100
	// The store rejects create batches larger than ten records.
	createBatchSize = 10
)

// Config captures the settings for reaching the hosted base.
type Config struct {
	BaseURL    string // defaults to the public API endpoint
	BaseID     string
	APIKey     string
	SitesTable string // defaults to "Sites"
	Timeout    time.Duration
}

// Client talks to one table of the hosted base.
type Client struct {
	http    *http.Client
	baseURL string
	baseID  string
	apiKey  string
	table   string
	log     zerolog.Logger
}

// NewClient builds a Client from cfg, applying defaults for the endpoint,
// table name, and timeout.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	table := cfg.SitesTable
	if table == "" {
		table = "Sites"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		baseID:  cfg.BaseID,
		apiKey:  cfg.APIKey,
		table:   table,
		log:     log,
	}
}

// recordFields mirrors the column names used by the hosted base.
type recordFields struct {
	Name        string  `json:"Name,omitempty"`
	SFLAName    string  `json:"SFLA Name,omitempty"`
	Status      string  `json:"Status,omitempty"`
	Lat         float64 `json:"Lat,omitempty"`
	Lng         float64 `json:"Lng,omitempty"`
	Notes       string  `json:"Notes,omitempty"`
	CheckCount  int     `json:"CheckCount,omitempty"`
	LastChecked string  `json:"LastChecked,omitempty"`
}

type record struct {
	ID     string       `json:"id,omitempty"`
	Fields recordFields `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// FetchAll pages through the table and returns every site record.
func (c *Client) FetchAll(ctx context.Context) ([]*domain.Site, error) {
	var sites []*domain.Site
	offset := ""
	for {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Records {
			sites = append(sites, toSite(rec))
		}
		if page.Offset == "" {
			return sites, nil
		}
		offset = page.Offset
	}
}

func (c *Client) fetchPage(ctx context.Context, offset string) (*listResponse, error) {
	q := url.Values{}
	q.Set("pageSize", fmt.Sprint(pageSize))
	if offset != "" {
		q.Set("offset", offset)
	}
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.baseID, url.PathEscape(c.table), q.Encode())

	var page listResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// fetchRecord returns a single record by id.
func (c *Client) fetchRecord(ctx context.Context, recordID string) (*record, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table), recordID)
	var rec record
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateStatus patches a record with the outcome of a status check. The
// status value is checked locally first; an unrecognized value is never sent
// to the store. Empty notes leave the record's notes untouched.
func (c *Client) UpdateStatus(ctx context.Context, recordID string, status domain.SiteStatus, notes string, checkCount int, ts time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("airtable: %w (%q)", domain.ErrInvalidStatus, status)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table), recordID)
	body := record{Fields: recordFields{
		Status:      string(status),
		Notes:       notes,
		CheckCount:  checkCount,
		LastChecked: ts.UTC().Format(time.RFC3339),
	}}
	return c.do(ctx, http.MethodPatch, endpoint, body, nil)
}

// UpdateCoordinates patches a record's position (KML sync path).
func (c *Client) UpdateCoordinates(ctx context.Context, recordID string, coords domain.Coordinates) error {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table), recordID)
	body := record{Fields: recordFields{Lat: coords.Lat, Lng: coords.Lng}}
	return c.do(ctx, http.MethodPatch, endpoint, body, nil)
}

// CreateSites creates new records in batches of ten, the store's limit.
// New sites enter the base as unchecked.
func (c *Client) CreateSites(ctx context.Context, sites []*domain.Site) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table))

	for start := 0; start < len(sites); start += createBatchSize {
		end := start + createBatchSize
		if end > len(sites) {
			end = len(sites)
		}
		batch := struct {
			Records []record `json:"records"`
		}{}
		for _, s := range sites[start:end] {
			batch.Records = append(batch.Records, record{Fields: recordFields{
				Name:   s.Name,
				Status: string(domain.StatusUnchecked),
				Lat:    s.Coordinates.Lat,
				Lng:    s.Coordinates.Lng,
			}})
		}
		if err := c.do(ctx, http.MethodPost, endpoint, batch, nil); err != nil {
			return err
		}
		c.log.Info().Int("count", end-start).Msg("site batch created in record store")
	}
	return nil
}

// do performs one API call with a single bounded retry on transient failure.
// Transport errors and 5xx/429 responses count as transient; everything else
// surfaces immediately.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.log.Warn().Err(lastErr).Str("endpoint", endpoint).Msg("record store call retried")
		}

		var payload *bytes.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("airtable: encode request: %w", err)
			}
			payload = bytes.NewReader(data)
		} else {
			payload = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
		if err != nil {
			return fmt.Errorf("airtable: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if transient(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("airtable: %w", domain.ErrSiteNotFound)
		case resp.StatusCode >= 400:
			return fmt.Errorf("airtable: %s %s: unexpected status %d", method, endpoint, resp.StatusCode)
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("airtable: decode response: %w", err)
			}
		}
		return nil
	}
	return fmt.Errorf("airtable: %w: %v", domain.ErrStoreUnavailable, lastErr)
}

func transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func toSite(rec record) *domain.Site {
	name := rec.Fields.SFLAName
	if name == "" {
		name = rec.Fields.Name
	}
	lastChecked, _ := time.Parse(time.RFC3339, rec.Fields.LastChecked)
	return &domain.Site{
		ID:          rec.ID,
		Name:        rec.Fields.Name,
		DisplayName: name,
		Coordinates: domain.Coordinates{Lat: rec.Fields.Lat, Lng: rec.Fields.Lng},
		Status:      domain.SiteStatus(rec.Fields.Status),
		Notes:       rec.Fields.Notes,
		CheckCount:  rec.Fields.CheckCount,
		LastChecked: lastChecked,
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

type stubSiteService struct {
	markers []ports.MarkerView
	detail  *ports.SiteDetail
	changes []ports.ChangeItem
	err     error
}

func (s *stubSiteService) ListMarkers(ctx context.Context) ([]ports.MarkerView, error) {
	return s.markers, s.err
}

func (s *stubSiteService) GetSite(ctx context.Context, id string) (*ports.SiteDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func (s *stubSiteService) ListChanges(ctx context.Context, siteID string) ([]ports.ChangeItem, error) {
	return s.changes, s.err
}

func TestSiteHandler_Markers(t *testing.T) {
	stub := &stubSiteService{markers: []ports.MarkerView{
		{ID: "a", Name: "North Gate", Lat: 24.7, Lng: 46.6, Status: "ok"},
		{ID: "b", Name: "South Gate", Lat: 24.6, Lng: 46.7, Status: "issue"},
	}}
	h := NewSiteHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/markers", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Markers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["count"] != float64(2) {
		t.Fatalf("expected count 2, got %v", resp["count"])
	}
	items, ok := resp["markers"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 markers, got %v", resp["markers"])
	}
	first := items[0].(map[string]any)
	if first["id"] != "a" || first["status"] != "ok" {
		t.Fatalf("unexpected marker payload: %+v", first)
	}
}

func TestSiteHandler_Get_NotFoundPropagates(t *testing.T) {
	h := NewSiteHandler(&stubSiteService{err: domain.ErrSiteNotFound})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sites/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Get(c)
	if err == nil {
		t.Fatalf("expected error")
	}
	// The central error handler maps domain errors; the handler passes them through.
	if err != domain.ErrSiteNotFound {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}
}

func TestSiteHandler_Changes(t *testing.T) {
	stub := &stubSiteService{changes: []ports.ChangeItem{
		{SiteID: "a", SiteName: "North Gate", PreviousStatus: "unchecked", NewStatus: "ok", Operator: "alice"},
	}}
	h := NewSiteHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sites/a/changes", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("a")

	if err := h.Changes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	changes := resp["changes"].([]any)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	entry := changes[0].(map[string]any)
	if entry["previous_status"] != "unchecked" || entry["new_status"] != "ok" {
		t.Fatalf("unexpected change payload: %+v", entry)
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

// SiteHandler handles HTTP requests for site reads.
type SiteHandler struct {
	service ports.SiteService
}

func NewSiteHandler(service ports.SiteService) *SiteHandler {
	return &SiteHandler{service: service}
}

// Markers handles GET /v1/markers.
//
// @Summary      List map markers
// @Tags         sites
// @Produce      json
// @Success      200  {object}  markersResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/markers [get]
func (h *SiteHandler) Markers(c echo.Context) error {
	markers, err := h.service.ListMarkers(c.Request().Context())
	if err != nil {
		return err
	}

	resp := markersResponse{Markers: make([]markerResponse, len(markers)), Count: len(markers)}
	for i, m := range markers {
		resp.Markers[i] = toMarkerResponse(m)
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/sites/:id.
//
// @Summary      Get a site by id
// @Tags         sites
// @Produce      json
// @Param        id   path      string  true  "Site id"
// @Success      200  {object}  siteDetailResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/sites/{id} [get]
func (h *SiteHandler) Get(c echo.Context) error {
	detail, err := h.service.GetSite(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSiteDetailResponse(detail))
}

// Changes handles GET /v1/sites/:id/changes.
//
// @Summary      List a site's status change history
// @Tags         sites
// @Produce      json
// @Param        id   path      string  true  "Site id"
// @Success      200  {object}  changesResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/sites/{id}/changes [get]
func (h *SiteHandler) Changes(c echo.Context) error {
	changes, err := h.service.ListChanges(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, changesResponse{Changes: toChangeResponses(changes)})
}

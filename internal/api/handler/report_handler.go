package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/willslawrence/sfla-tracker/internal/core/ports"
	"github.com/willslawrence/sfla-tracker/internal/report"
)

// ReportHandler serves monthly usability reports.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Monthly handles GET /v1/reports/:year/:month.
//
// @Summary      Monthly report as JSON
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        year   path      int  true  "Year"
// @Param        month  path      int  true  "Month (1-12)"
// @Success      200    {object}  monthlyReportResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/reports/{year}/{month} [get]
func (h *ReportHandler) Monthly(c echo.Context) error {
	year, month, err := reportPeriod(c)
	if err != nil {
		return err
	}

	rep, err := h.service.Monthly(c.Request().Context(), year, month)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(rep))
}

// MonthlyXLSX handles GET /v1/reports/:year/:month/xlsx — the same report
// rendered as a downloadable workbook.
//
// @Summary      Monthly report as an XLSX workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        year   path  int  true  "Year"
// @Param        month  path  int  true  "Month (1-12)"
// @Success      200
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/reports/{year}/{month}/xlsx [get]
func (h *ReportHandler) MonthlyXLSX(c echo.Context) error {
	year, month, err := reportPeriod(c)
	if err != nil {
		return err
	}

	rep, err := h.service.Monthly(c.Request().Context(), year, month)
	if err != nil {
		return err
	}
	data, err := report.ToXLSX(rep)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+report.Filename(year, month)+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func reportPeriod(c echo.Context) (int, time.Month, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	m, err := strconv.Atoi(c.Param("month"))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid month")
	}
	return year, time.Month(m), nil
}

func toReportResponse(r *ports.MonthlyReport) monthlyReportResponse {
	counts := make([]statusCountResponse, len(r.Counts))
	for i, sc := range r.Counts {
		counts[i] = statusCountResponse{Status: sc.Status, Count: sc.Count, Percent: sc.Percent}
	}
	sites := make([]reportSiteResponse, len(r.Sites))
	for i, s := range r.Sites {
		sites[i] = reportSiteResponse{Name: s.Name, Status: s.Status, LastChecked: s.LastChecked}
	}
	return monthlyReportResponse{
		Year:        r.Year,
		Month:       r.Month.String(),
		GeneratedAt: r.GeneratedAt,
		TotalSites:  r.TotalSites,
		TotalChecks: r.TotalChecks,
		Counts:      counts,
		Changes:     toChangeResponses(r.Changes),
		Sites:       sites,
	}
}

package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

// CheckDispatcher is the interface the handler uses to hand checks to the
// per-site workers. Process applies one check and waits for the outcome;
// Enqueue and EnqueueBatch are fire-and-forget.
type CheckDispatcher interface {
	Process(ctx context.Context, check ports.StatusCheckInput) (*ports.StatusCheckResult, error)
	Enqueue(check ports.StatusCheckInput)
	EnqueueBatch(checks []ports.StatusCheckInput)
}

// CheckHandler handles operator status check ingestion.
type CheckHandler struct {
	dispatcher CheckDispatcher
}

// NewCheckHandler creates a CheckHandler. Single checks are applied through
// the dispatcher synchronously so the client can commit or roll back its
// optimistic marker while keeping one writer per site; batches are
// fire-and-forget.
func NewCheckHandler(dispatcher CheckDispatcher) *CheckHandler {
	return &CheckHandler{dispatcher: dispatcher}
}

// Apply handles POST /v1/checks — applies a single status check and reports
// whether it was committed or superseded.
//
// @Summary      Apply a single status check
// @Tags         checks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      statusCheckRequest  true  "Status check"
// @Success      200   {object}  checkResultResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/checks [post]
func (h *CheckHandler) Apply(c echo.Context) error {
	var req statusCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.dispatcher.Process(c.Request().Context(), h.toCheckInput(c, req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, checkResultResponse{
		Applied:        result.Applied,
		SiteID:         result.SiteID,
		PreviousStatus: result.PreviousStatus,
		Status:         result.Status,
		Timestamp:      result.Timestamp,
	})
}

// ApplyBatch handles POST /v1/checks/batch — enqueues a batch of checks, returns 202.
//
// @Summary      Ingest a batch of status checks
// @Tags         checks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []statusCheckRequest  true  "Array of status checks"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/checks/batch [post]
func (h *CheckHandler) ApplyBatch(c echo.Context) error {
	var reqs []statusCheckRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.StatusCheckInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("check[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, h.toCheckInput(c, req))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "checks accepted",
		Count:   len(inputs),
	})
}

// toCheckInput maps the HTTP request to the service DTO. The operator comes
// from the authenticated token, never from the payload.
func (h *CheckHandler) toCheckInput(c echo.Context, r statusCheckRequest) ports.StatusCheckInput {
	operator, _ := c.Get("username").(string)
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return ports.StatusCheckInput{
		SiteID:    r.SiteID,
		NewStatus: r.Status,
		Notes:     r.Notes,
		Operator:  operator,
		Seq:       r.Seq,
		Timestamp: ts,
	}
}

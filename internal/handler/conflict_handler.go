package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/service"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
	"github.com/sapta-dev/bimbel-admin-api/pkg/response"
)

type conflictChecker interface {
	Check(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
}

// ConflictHandler exposes conflict detection, both the synchronous check and
// the debounced watch endpoint the scheduling form polls.
type ConflictHandler struct {
	checker conflictChecker
	monitor *service.ConflictMonitor
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(checker conflictChecker, monitor *service.ConflictMonitor) *ConflictHandler {
	return &ConflictHandler{checker: checker, monitor: monitor}
}

// Check godoc
// @Summary Check a candidate lesson window for conflicts
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Candidate window"
// @Success 200 {object} response.Envelope
// @Router /conflicts/check [post]
func (h *ConflictHandler) Check(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict check payload"))
		return
	}
	resp, err := h.checker.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Watch godoc
// @Summary Schedule a debounced conflict check
// @Description Rapid consecutive calls coalesce; only the newest request's result is published.
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Candidate window"
// @Success 202 {object} response.Envelope
// @Router /conflicts/watch [post]
func (h *ConflictHandler) Watch(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict check payload"))
		return
	}
	generation := h.monitor.Request(context.WithoutCancel(c.Request.Context()), req)
	response.JSON(c, http.StatusAccepted, gin.H{"generation": generation}, nil)
}

// Latest godoc
// @Summary Read the latest published conflict report
// @Tags Conflicts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /conflicts/latest [get]
func (h *ConflictHandler) Latest(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.monitor.Latest(), nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
	"github.com/sapta-dev/bimbel-admin-api/pkg/response"
)

type slotManager interface {
	ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error)
	Create(ctx context.Context, req dto.CreateScheduleSlotRequest) (*dto.CreateScheduleSlotResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateScheduleSlotRequest) (*models.ScheduleSlot, []models.SlotWarning, error)
	Archive(ctx context.Context, id string) error
	Generate(ctx context.Context, id string, opts dto.GenerationOptions) (*dto.GenerationSummary, error)
	Suggest(ctx context.Context, req dto.SlotSuggestionRequest) ([]models.SlotSuggestion, error)
}

// ScheduleSlotHandler exposes the recurring weekly slot endpoints.
type ScheduleSlotHandler struct {
	slots slotManager
}

// NewScheduleSlotHandler constructs the handler.
func NewScheduleSlotHandler(slots slotManager) *ScheduleSlotHandler {
	return &ScheduleSlotHandler{slots: slots}
}

// ListByClass godoc
// @Summary List active schedule slots for a class
// @Tags ScheduleSlots
// @Produce json
// @Param classId query string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-slots [get]
func (h *ScheduleSlotHandler) ListByClass(c *gin.Context) {
	classID := c.Query("classId")
	if classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId is required"))
		return
	}
	slots, err := h.slots.ListByClass(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Create a weekly schedule slot, optionally generating lessons
// @Tags ScheduleSlots
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduleSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Router /schedule-slots [post]
func (h *ScheduleSlotHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	resp, err := h.slots.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Update godoc
// @Summary Edit a weekly schedule slot
// @Tags ScheduleSlots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.UpdateScheduleSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Router /schedule-slots/{id} [put]
func (h *ScheduleSlotHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, warnings, err := h.slots.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"slot": slot, "warnings": warnings}, nil)
}

// Archive godoc
// @Summary Archive a schedule slot without touching generated lessons
// @Tags ScheduleSlots
// @Param id path string true "Slot ID"
// @Success 204 {string} string ""
// @Router /schedule-slots/{id} [delete]
func (h *ScheduleSlotHandler) Archive(c *gin.Context) {
	if err := h.slots.Archive(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Generate godoc
// @Summary Expand a schedule slot into dated lessons
// @Tags ScheduleSlots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.GenerationOptions true "Generation options"
// @Success 200 {object} response.Envelope
// @Router /schedule-slots/{id}/generate [post]
func (h *ScheduleSlotHandler) Generate(c *gin.Context) {
	var opts dto.GenerationOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation options"))
		return
	}
	summary, err := h.slots.Generate(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Suggest godoc
// @Summary Suggest alternative weekly slots for a candidate
// @Tags ScheduleSlots
// @Accept json
// @Produce json
// @Param payload body dto.SlotSuggestionRequest true "Candidate slot"
// @Success 200 {object} response.Envelope
// @Router /schedule-slots/suggestions [post]
func (h *ScheduleSlotHandler) Suggest(c *gin.Context) {
	var req dto.SlotSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}
	suggestions, err := h.slots.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

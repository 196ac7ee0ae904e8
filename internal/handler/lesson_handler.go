package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/service"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
	"github.com/sapta-dev/bimbel-admin-api/pkg/response"
)

type lessonLifecycle interface {
	List(ctx context.Context, filter models.LessonFilter) ([]dto.LessonView, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.LessonView, error)
	Create(ctx context.Context, req dto.CreateLessonRequest) (*dto.LessonView, error)
	Conduct(ctx context.Context, id string, req dto.ConductLessonRequest, actor service.Actor) (*dto.LessonMutationResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelLessonRequest, actor service.Actor) (*dto.LessonMutationResponse, error)
	NoShow(ctx context.Context, id string, actor service.Actor) (*dto.LessonMutationResponse, error)
	Reschedule(ctx context.Context, id string, req dto.RescheduleLessonRequest, actor service.Actor) (*dto.LessonMutationResponse, error)
	Edit(ctx context.Context, id string, req dto.EditLessonRequest, actor service.Actor) (*dto.LessonMutationResponse, error)
	CreateMakeup(ctx context.Context, sourceID string, data dto.MakeupData) (*dto.LessonMutationResponse, error)
	Delete(ctx context.Context, id string, actor service.Actor) error
}

type quickActionExecutor interface {
	Execute(ctx context.Context, lessonID string, req dto.QuickActionRequest, actor service.Actor) (*dto.LessonMutationResponse, error)
}

type scheduleExporter interface {
	Export(ctx context.Context, filter models.LessonFilter, format string) ([]byte, string, error)
}

// LessonHandler exposes lesson lifecycle endpoints.
type LessonHandler struct {
	lifecycle lessonLifecycle
	quick     quickActionExecutor
	exporter  scheduleExporter
}

// NewLessonHandler constructs the handler. exporter may be nil when exports
// are disabled.
func NewLessonHandler(lifecycle lessonLifecycle, quick quickActionExecutor, exporter scheduleExporter) *LessonHandler {
	return &LessonHandler{lifecycle: lifecycle, quick: quick, exporter: exporter}
}

// List godoc
// @Summary List lessons with status indicators
// @Tags Lessons
// @Produce json
// @Param classId query string false "Class ID"
// @Param teacherId query string false "Teacher ID"
// @Param status query string false "Lesson status"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	views, pagination, err := h.lifecycle.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// Get godoc
// @Summary Get a lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	view, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Create godoc
// @Summary Create an ad-hoc lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}
	view, err := h.lifecycle.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Conduct godoc
// @Summary Mark a lesson as conducted
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.ConductLessonRequest false "Conduct payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/conduct [post]
func (h *LessonHandler) Conduct(c *gin.Context) {
	var req dto.ConductLessonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conduct payload"))
			return
		}
	}
	resp, err := h.lifecycle.Conduct(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Cancel godoc
// @Summary Cancel a lesson, optionally creating a linked makeup lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.CancelLessonRequest true "Cancel payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/cancel [post]
func (h *LessonHandler) Cancel(c *gin.Context) {
	var req dto.CancelLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancel payload"))
		return
	}
	resp, err := h.lifecycle.Cancel(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Delete godoc
// @Summary Delete a scheduled lesson that never happened
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.lifecycle.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NoShow godoc
// @Summary Mark a lesson as a no-show
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/no-show [post]
func (h *LessonHandler) NoShow(c *gin.Context) {
	resp, err := h.lifecycle.NoShow(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Reschedule godoc
// @Summary Move a lesson to a new date and time window
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.RescheduleLessonRequest true "Reschedule payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/reschedule [post]
func (h *LessonHandler) Reschedule(c *gin.Context) {
	var req dto.RescheduleLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reschedule payload"))
		return
	}
	resp, err := h.lifecycle.Reschedule(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Edit godoc
// @Summary Edit a lesson's window and notes, honoring the locking rules
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.EditLessonRequest true "Edit payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [patch]
func (h *LessonHandler) Edit(c *gin.Context) {
	var req dto.EditLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}
	resp, err := h.lifecycle.Edit(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// CreateMakeup godoc
// @Summary Attach a makeup lesson to a cancelled lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Cancelled lesson ID"
// @Param payload body dto.MakeupData true "Makeup payload"
// @Success 201 {object} response.Envelope
// @Router /lessons/{id}/makeup [post]
func (h *LessonHandler) CreateMakeup(c *gin.Context) {
	var data dto.MakeupData
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid makeup payload"))
		return
	}
	resp, err := h.lifecycle.CreateMakeup(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// QuickAction godoc
// @Summary Execute a quick action from the lesson list
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.QuickActionRequest true "Quick action payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/quick-action [post]
func (h *LessonHandler) QuickAction(c *gin.Context) {
	var req dto.QuickActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quick action payload"))
		return
	}
	resp, err := h.quick.Execute(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Export godoc
// @Summary Export the filtered lesson schedule as CSV or PDF
// @Tags Lessons
// @Produce octet-stream
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Router /lessons/export [get]
func (h *LessonHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	payload, contentType, err := h.exporter.Export(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("lesson-schedule-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func lessonFilterFromQuery(c *gin.Context) (models.LessonFilter, error) {
	filter := models.LessonFilter{
		ClassID:    c.Query("classId"),
		TeacherID:  c.Query("teacherId"),
		SemesterID: c.Query("semesterId"),
		Status:     c.Query("status"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	if raw := c.Query("dateFrom"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid dateFrom")
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("dateTo"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid dateTo")
		}
		filter.DateTo = &to
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return filter, nil
}

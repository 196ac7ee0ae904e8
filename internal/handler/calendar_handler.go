package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
	"github.com/sapta-dev/bimbel-admin-api/pkg/response"
)

type calendarProvider interface {
	ActiveSemester(ctx context.Context) (*models.Semester, error)
	ListHolidays(ctx context.Context, from, until time.Time) ([]models.Holiday, error)
	CreateHoliday(ctx context.Context, date time.Time, name string) (*models.Holiday, error)
}

// CalendarHandler exposes semester and holiday endpoints.
type CalendarHandler struct {
	calendar calendarProvider
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(calendar calendarProvider) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// ActiveSemester godoc
// @Summary Get the currently active semester
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/semester [get]
func (h *CalendarHandler) ActiveSemester(c *gin.Context) {
	semester, err := h.calendar.ActiveSemester(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}

// ListHolidays godoc
// @Summary List holidays in a date range
// @Tags Calendar
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param until query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/holidays [get]
func (h *CalendarHandler) ListHolidays(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
		return
	}
	until, err := time.Parse("2006-01-02", c.Query("until"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid until date"))
		return
	}
	holidays, err := h.calendar.ListHolidays(c.Request.Context(), from, until)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, nil)
}

type createHolidayRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateHoliday godoc
// @Summary Record a holiday that generation will skip
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body createHolidayRequest true "Holiday payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/holidays [post]
func (h *CalendarHandler) CreateHoliday(c *gin.Context) {
	var req createHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid holiday payload"))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid holiday date"))
		return
	}
	holiday, err := h.calendar.CreateHoliday(c.Request.Context(), date, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/timeutil"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type calendarStore interface {
	FindActiveSemester(ctx context.Context) (*models.Semester, error)
	ListHolidaysBetween(ctx context.Context, from, until time.Time) ([]models.Holiday, error)
	CreateHoliday(ctx context.Context, holiday *models.Holiday) error
}

// CalendarService exposes the semester and holiday data the generator works
// against.
type CalendarService struct {
	calendar calendarStore
	logger   *zap.Logger
}

// NewCalendarService instantiates CalendarService.
func NewCalendarService(calendar calendarStore, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{calendar: calendar, logger: logger}
}

// ActiveSemester returns the currently active semester.
func (s *CalendarService) ActiveSemester(ctx context.Context) (*models.Semester, error) {
	semester, err := s.calendar.FindActiveSemester(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}
	return semester, nil
}

// ListHolidays returns holidays inside [from, until] inclusive.
func (s *CalendarService) ListHolidays(ctx context.Context, from, until time.Time) ([]models.Holiday, error) {
	if until.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "until precedes from")
	}
	holidays, err := s.calendar.ListHolidaysBetween(ctx, timeutil.DateOnly(from), timeutil.DateOnly(until))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	return holidays, nil
}

// CreateHoliday records a holiday on which generation skips lessons.
func (s *CalendarService) CreateHoliday(ctx context.Context, date time.Time, name string) (*models.Holiday, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "holiday name is required")
	}
	holiday := &models.Holiday{Date: timeutil.DateOnly(date), Name: name}
	if err := s.calendar.CreateHoliday(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create holiday")
	}
	return holiday, nil
}

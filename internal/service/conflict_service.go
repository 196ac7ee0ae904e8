package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/timeutil"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type conflictLessonReader interface {
	FindOverlapping(ctx context.Context, date time.Time, startTime, endTime, classID, teacherID, room, excludeID string) ([]models.Lesson, error)
}

type conflictClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// ConflictService detects collisions between a candidate lesson window and
// existing lessons sharing the class, teacher or room.
type ConflictService struct {
	lessons   conflictLessonReader
	classes   conflictClassReader
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewConflictService instantiates ConflictService.
func NewConflictService(lessons conflictLessonReader, classes conflictClassReader, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{lessons: lessons, classes: classes, validator: validate, logger: logger, metrics: metrics}
}

// Check returns the conflicts for the candidate window. An empty slice means
// the window is free; repository failures surface as errors, never as an
// empty report.
func (s *ConflictService) Check(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	started := time.Now()
	resp, err := s.check(ctx, req)
	if s.metrics != nil {
		result := "clear"
		switch {
		case err != nil:
			result = "error"
		case len(resp.Conflicts) > 0:
			result = "conflict"
		}
		s.metrics.ObserveConflictCheck(result, time.Since(started))
	}
	return resp, err
}

func (s *ConflictService) check(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}

	window, err := timeutil.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}

	date, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduled date")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to load class")
	}

	overlapping, err := s.lessons.FindOverlapping(ctx, date, window.Start.String(), window.End.String(), class.ID, class.TeacherID, class.Room, req.ExcludeLessonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to check lesson conflicts")
	}

	conflicts := make([]models.LessonConflict, 0, len(overlapping))
	for _, lesson := range overlapping {
		conflicts = append(conflicts, models.LessonConflict{
			LessonID:      lesson.ID,
			ClassID:       lesson.ClassID,
			TeacherID:     lesson.TeacherID,
			Room:          lesson.Room,
			ScheduledDate: lesson.ScheduledDate,
			StartTime:     lesson.StartTime,
			EndTime:       lesson.EndTime,
			Dimension:     conflictDimension(lesson, class),
		})
	}

	resp := &dto.ConflictCheckResponse{Conflicts: conflicts}
	if len(conflicts) > 0 {
		resp.Suggestions = dateSuggestions(date, window)
	}
	return resp, nil
}

// conflictDimension classifies a colliding lesson by the most specific
// shared resource: class beats teacher beats room.
func conflictDimension(lesson models.Lesson, class *models.Class) models.ConflictDimension {
	switch {
	case lesson.ClassID == class.ID:
		return models.ConflictDimensionClass
	case lesson.TeacherID == class.TeacherID:
		return models.ConflictDimensionTeacher
	default:
		return models.ConflictDimensionRoom
	}
}

// dateSuggestions proposes deterministic alternatives: the next weekday
// (skipping weekends) and the same weekday one week later, both with the
// original window.
func dateSuggestions(date time.Time, window timeutil.TimeRange) []dto.DateSuggestion {
	return []dto.DateSuggestion{
		{
			Label:         "next weekday",
			ScheduledDate: timeutil.NextWeekday(date).Format("2006-01-02"),
			StartTime:     window.Start.String(),
			EndTime:       window.End.String(),
		},
		{
			Label:         "next week",
			ScheduledDate: timeutil.NextWeekSameDay(date).Format("2006-01-02"),
			StartTime:     window.Start.String(),
			EndTime:       window.End.String(),
		},
	}
}

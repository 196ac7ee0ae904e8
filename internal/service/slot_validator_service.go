package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/timeutil"
	"github.com/sapta-dev/bimbel-admin-api/pkg/config"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type slotReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error)
	ListSharingResources(ctx context.Context, classID, teacherID, room string) ([]models.ScheduleSlot, error)
}

type slotClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// SlotValidatorService validates candidate weekly slots against the class's
// own schedule and against other classes sharing the teacher or room, and
// proposes alternatives on a fixed weekly grid.
type SlotValidatorService struct {
	slots     slotReader
	classes   slotClassReader
	cfg       config.SchedulingConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotValidatorService instantiates SlotValidatorService.
func NewSlotValidatorService(slots slotReader, classes slotClassReader, cfg config.SchedulingConfig, validate *validator.Validate, logger *zap.Logger) *SlotValidatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotValidatorService{slots: slots, classes: classes, cfg: cfg, validator: validate, logger: logger}
}

// Validate checks a candidate slot. Same-class overlap on the same day is a
// hard failure; overlap with another class sharing the teacher or room only
// produces warnings. excludeSlotID skips the slot being edited.
func (s *SlotValidatorService) Validate(ctx context.Context, classID, dayOfWeek, startTime, endTime, excludeSlotID string) (*models.SlotValidation, error) {
	day, err := timeutil.ParseDay(dayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}
	window, err := timeutil.NewTimeRange(startTime, endTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to load class")
	}

	own, err := s.slots.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to load class slots")
	}
	for i := range own {
		other := own[i]
		if other.ID == excludeSlotID {
			continue
		}
		if !slotCollides(other, day, window) {
			continue
		}
		return &models.SlotValidation{
			OK:          false,
			Reason:      fmt.Sprintf("class already meets %s %s-%s", other.DayOfWeek, other.StartTime, other.EndTime),
			Overlapping: &other,
		}, nil
	}

	shared, err := s.slots.ListSharingResources(ctx, classID, class.TeacherID, class.Room)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to load shared slots")
	}

	result := &models.SlotValidation{OK: true}
	for i := range shared {
		other := shared[i]
		if other.ID == excludeSlotID || !slotCollides(other, day, window) {
			continue
		}
		result.Warnings = append(result.Warnings, models.SlotWarning{
			Slot:      other,
			Dimension: s.warningDimension(ctx, other, class),
		})
	}
	return result, nil
}

// SuggestAlternatives walks a Monday-first weekly grid bounded by the
// configured day window and returns the first free positions preserving the
// candidate's duration. Output is deterministic for a given schedule state.
func (s *SlotValidatorService) SuggestAlternatives(ctx context.Context, req dto.SlotSuggestionRequest) ([]models.SlotSuggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}
	candidate, err := timeutil.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}
	candidateDay, err := timeutil.ParseDay(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to load class")
	}

	own, err := s.slots.ListByClass(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to load class slots")
	}
	shared, err := s.slots.ListSharingResources(ctx, req.ClassID, class.TeacherID, class.Room)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "failed to load shared slots")
	}
	busy := append(own, shared...)

	dayStart, err := timeutil.ParseClock(s.cfg.DayStart)
	if err != nil {
		dayStart, _ = timeutil.ParseClock("07:00")
	}
	dayEnd, err := timeutil.ParseClock(s.cfg.DayEnd)
	if err != nil {
		dayEnd, _ = timeutil.ParseClock("21:00")
	}
	step := int(s.cfg.SuggestionStep / time.Minute)
	if step <= 0 {
		step = 30
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.SuggestionLimit
	}
	if limit <= 0 {
		limit = 3
	}

	duration := candidate.Minutes()
	var suggestions []models.SlotSuggestion
	for _, day := range timeutil.OrderedDays() {
		for start := dayStart; start.AddMinutes(duration) <= dayEnd; start = start.AddMinutes(step) {
			window := timeutil.TimeRange{Start: start, End: start.AddMinutes(duration)}
			if day == candidateDay && window == candidate {
				continue
			}
			if anySlotCollides(busy, day, window) {
				continue
			}
			suggestions = append(suggestions, models.SlotSuggestion{
				DayOfWeek: timeutil.FormatDay(day),
				StartTime: window.Start.String(),
				EndTime:   window.End.String(),
			})
			if len(suggestions) >= limit {
				return suggestions, nil
			}
		}
	}
	return suggestions, nil
}

// warningDimension classifies a shared-resource overlap. A lookup failure
// degrades to ROOM rather than failing the whole validation.
func (s *SlotValidatorService) warningDimension(ctx context.Context, slot models.ScheduleSlot, class *models.Class) models.ConflictDimension {
	other, err := s.classes.FindByID(ctx, slot.ClassID)
	if err != nil {
		s.logger.Warn("failed to classify slot warning", zap.String("slot_id", slot.ID), zap.Error(err))
		return models.ConflictDimensionRoom
	}
	if other.TeacherID == class.TeacherID {
		return models.ConflictDimensionTeacher
	}
	return models.ConflictDimensionRoom
}

func slotCollides(slot models.ScheduleSlot, day time.Weekday, window timeutil.TimeRange) bool {
	otherDay, err := timeutil.ParseDay(slot.DayOfWeek)
	if err != nil || otherDay != day {
		return false
	}
	otherWindow, err := timeutil.NewTimeRange(slot.StartTime, slot.EndTime)
	if err != nil {
		return false
	}
	return window.Overlaps(otherWindow)
}

func anySlotCollides(slots []models.ScheduleSlot, day time.Weekday, window timeutil.TimeRange) bool {
	for i := range slots {
		if slotCollides(slots[i], day, window) {
			return true
		}
	}
	return false
}

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
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type slotStore interface {
	ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error)
	Create(ctx context.Context, slot *models.ScheduleSlot) error
	Update(ctx context.Context, slot *models.ScheduleSlot) error
	Archive(ctx context.Context, id string) error
}

type slotValidator interface {
	Validate(ctx context.Context, classID, dayOfWeek, startTime, endTime, excludeSlotID string) (*models.SlotValidation, error)
	SuggestAlternatives(ctx context.Context, req dto.SlotSuggestionRequest) ([]models.SlotSuggestion, error)
}

type slotGenerator interface {
	Generate(ctx context.Context, slot *models.ScheduleSlot, opts dto.GenerationOptions) (*dto.GenerationSummary, error)
}

// ScheduleSlotService owns the recurring weekly slots: creation with
// validation, optional immediate lesson generation, edits and archival.
type ScheduleSlotService struct {
	slots     slotStore
	validate  slotValidator
	generator slotGenerator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleSlotService instantiates ScheduleSlotService.
func NewScheduleSlotService(slots slotStore, validate slotValidator, generator slotGenerator, v *validator.Validate, logger *zap.Logger) *ScheduleSlotService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleSlotService{slots: slots, validate: validate, generator: generator, validator: v, logger: logger}
}

// ListByClass returns the active slots of a class.
func (s *ScheduleSlotService) ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error) {
	slots, err := s.slots.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule slots")
	}
	return slots, nil
}

// Create validates and stores a new weekly slot. A same-class overlap always
// blocks. Shared-resource warnings block too unless force is set, so the
// console must confirm double-booking a teacher or room; confirmed warnings
// come back in the response. GenerateLessons expands the slot into lessons
// in the same call.
func (s *ScheduleSlotService) Create(ctx context.Context, req dto.CreateScheduleSlotRequest) (*dto.CreateScheduleSlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	if req.GenerateLessons && req.Generation == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "generation options required when generating lessons")
	}

	validation, err := s.runValidation(ctx, req.ClassID, req.DayOfWeek, req.StartTime, req.EndTime, "", req.Force)
	if err != nil {
		return nil, err
	}

	slot, err := s.buildSlot(req)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule slot")
	}

	resp := &dto.CreateScheduleSlotResponse{Slot: *slot, Warnings: validation.Warnings}
	if req.GenerateLessons {
		summary, err := s.generator.Generate(ctx, slot, *req.Generation)
		if err != nil {
			// The slot is already stored; surface the generation failure
			// without rolling it back so the caller can retry generation.
			s.logger.Error("lesson generation after slot create failed",
				zap.String("slot_id", slot.ID), zap.Error(err))
			return nil, err
		}
		resp.Generation = summary
	}
	return resp, nil
}

// Update edits a slot, revalidating against the rest of the schedule while
// excluding the slot itself.
func (s *ScheduleSlotService) Update(ctx context.Context, id string, req dto.UpdateScheduleSlotRequest) (*models.ScheduleSlot, []models.SlotWarning, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	slot, err := s.findSlot(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if slot.Archived {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "archived slots cannot be edited")
	}

	validation, err := s.runValidation(ctx, slot.ClassID, req.DayOfWeek, req.StartTime, req.EndTime, slot.ID, req.Force)
	if err != nil {
		return nil, nil, err
	}

	window, err := timeutil.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}
	day, err := timeutil.ParseDay(req.DayOfWeek)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}

	slot.DayOfWeek = timeutil.FormatDay(day)
	slot.StartTime = window.Start.String()
	slot.EndTime = window.End.String()
	if req.SemesterID != "" {
		semesterID := req.SemesterID
		slot.SemesterID = &semesterID
	}
	if req.EffectiveFrom != "" {
		from, err := time.Parse("2006-01-02", req.EffectiveFrom)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid effective-from date")
		}
		slot.EffectiveFrom = timeutil.DateOnly(from)
	}
	if req.EffectiveUntil != "" {
		until, err := time.Parse("2006-01-02", req.EffectiveUntil)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid effective-until date")
		}
		u := timeutil.DateOnly(until)
		slot.EffectiveUntil = &u
	}

	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule slot")
	}
	return slot, validation.Warnings, nil
}

// Archive retires a slot. Lessons already generated from it are untouched.
func (s *ScheduleSlotService) Archive(ctx context.Context, id string) error {
	if _, err := s.findSlot(ctx, id); err != nil {
		return err
	}
	if err := s.slots.Archive(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive schedule slot")
	}
	return nil
}

// Generate expands an existing slot into lessons on demand.
func (s *ScheduleSlotService) Generate(ctx context.Context, id string, opts dto.GenerationOptions) (*dto.GenerationSummary, error) {
	if err := s.validator.Struct(opts); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation options")
	}
	slot, err := s.findSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.Archived {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "archived slots cannot generate lessons")
	}
	return s.generator.Generate(ctx, slot, opts)
}

// Suggest proposes alternative weekly slots for a candidate.
func (s *ScheduleSlotService) Suggest(ctx context.Context, req dto.SlotSuggestionRequest) ([]models.SlotSuggestion, error) {
	return s.validate.SuggestAlternatives(ctx, req)
}

func (s *ScheduleSlotService) runValidation(ctx context.Context, classID, day, start, end, excludeID string, force bool) (*models.SlotValidation, error) {
	validation, err := s.validate.Validate(ctx, classID, day, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	if !validation.OK {
		return nil, appErrors.Clone(appErrors.ErrConflict, validation.Reason)
	}
	if len(validation.Warnings) > 0 && !force {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("slot overlaps %d other class schedule(s); set force to confirm", len(validation.Warnings)))
	}
	return validation, nil
}

func (s *ScheduleSlotService) buildSlot(req dto.CreateScheduleSlotRequest) (*models.ScheduleSlot, error) {
	window, err := timeutil.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}
	day, err := timeutil.ParseDay(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}

	slot := &models.ScheduleSlot{
		ClassID:   req.ClassID,
		DayOfWeek: timeutil.FormatDay(day),
		StartTime: window.Start.String(),
		EndTime:   window.End.String(),
	}
	if req.SemesterID != "" {
		semesterID := req.SemesterID
		slot.SemesterID = &semesterID
	}
	if req.EffectiveFrom != "" {
		from, err := time.Parse("2006-01-02", req.EffectiveFrom)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid effective-from date")
		}
		slot.EffectiveFrom = timeutil.DateOnly(from)
	} else {
		slot.EffectiveFrom = timeutil.DateOnly(time.Now())
	}
	if req.EffectiveUntil != "" {
		until, err := time.Parse("2006-01-02", req.EffectiveUntil)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid effective-until date")
		}
		u := timeutil.DateOnly(until)
		slot.EffectiveUntil = &u
	}
	return slot, nil
}

func (s *ScheduleSlotService) findSlot(ctx context.Context, id string) (*models.ScheduleSlot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slot")
	}
	return slot, nil
}

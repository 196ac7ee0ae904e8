package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type slotStoreStub struct {
	slots   map[string]*models.ScheduleSlot
	created []*models.ScheduleSlot
	updated []*models.ScheduleSlot
}

func newSlotStoreStub() *slotStoreStub {
	return &slotStoreStub{slots: map[string]*models.ScheduleSlot{}}
}

func (s *slotStoreStub) ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error) {
	var out []models.ScheduleSlot
	for _, slot := range s.slots {
		if slot.ClassID == classID {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (s *slotStoreStub) FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *slot
	return &copied, nil
}

func (s *slotStoreStub) Create(ctx context.Context, slot *models.ScheduleSlot) error {
	if slot.ID == "" {
		slot.ID = "slot-created"
	}
	s.slots[slot.ID] = slot
	s.created = append(s.created, slot)
	return nil
}

func (s *slotStoreStub) Update(ctx context.Context, slot *models.ScheduleSlot) error {
	s.slots[slot.ID] = slot
	s.updated = append(s.updated, slot)
	return nil
}

func (s *slotStoreStub) Archive(ctx context.Context, id string) error {
	if slot, ok := s.slots[id]; ok {
		slot.Archived = true
	}
	return nil
}

type slotValidatorStub struct {
	validation  models.SlotValidation
	suggestions []models.SlotSuggestion
}

func (v *slotValidatorStub) Validate(ctx context.Context, classID, dayOfWeek, startTime, endTime, excludeSlotID string) (*models.SlotValidation, error) {
	copied := v.validation
	return &copied, nil
}

func (v *slotValidatorStub) SuggestAlternatives(ctx context.Context, req dto.SlotSuggestionRequest) ([]models.SlotSuggestion, error) {
	return v.suggestions, nil
}

type slotGeneratorStub struct {
	summary *dto.GenerationSummary
	err     error
	calls   int
}

func (g *slotGeneratorStub) Generate(ctx context.Context, slot *models.ScheduleSlot, opts dto.GenerationOptions) (*dto.GenerationSummary, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.summary, nil
}

func createSlotRequest() dto.CreateScheduleSlotRequest {
	return dto.CreateScheduleSlotRequest{
		ClassID:       "class-1",
		DayOfWeek:     "MONDAY",
		StartTime:     "10:00",
		EndTime:       "11:30",
		EffectiveFrom: "2026-09-01",
	}
}

func TestSlotCreateStoresSlotAndReturnsWarnings(t *testing.T) {
	store := newSlotStoreStub()
	warning := models.SlotWarning{Dimension: models.ConflictDimensionTeacher}
	validate := &slotValidatorStub{validation: models.SlotValidation{OK: true, Warnings: []models.SlotWarning{warning}}}
	svc := NewScheduleSlotService(store, validate, &slotGeneratorStub{}, nil, nil)

	req := createSlotRequest()
	req.Force = true
	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, "MONDAY", resp.Slot.DayOfWeek)
	assert.Equal(t, "10:00", resp.Slot.StartTime)
	assert.Equal(t, "11:30", resp.Slot.EndTime)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), resp.Slot.EffectiveFrom)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, models.ConflictDimensionTeacher, resp.Warnings[0].Dimension)
}

func TestSlotCreateBlockedByHardOverlap(t *testing.T) {
	store := newSlotStoreStub()
	validate := &slotValidatorStub{validation: models.SlotValidation{OK: false, Reason: "class already meets MONDAY 10:00-11:30"}}
	svc := NewScheduleSlotService(store, validate, &slotGeneratorStub{}, nil, nil)

	req := createSlotRequest()
	req.Force = true
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.created)
}

func TestSlotCreateWarningsRequireForce(t *testing.T) {
	store := newSlotStoreStub()
	warning := models.SlotWarning{Dimension: models.ConflictDimensionRoom}
	validate := &slotValidatorStub{validation: models.SlotValidation{OK: true, Warnings: []models.SlotWarning{warning}}}
	svc := NewScheduleSlotService(store, validate, &slotGeneratorStub{}, nil, nil)

	_, err := svc.Create(context.Background(), createSlotRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.created)
}

func TestSlotCreateRequiresGenerationOptions(t *testing.T) {
	svc := NewScheduleSlotService(newSlotStoreStub(), &slotValidatorStub{validation: models.SlotValidation{OK: true}}, &slotGeneratorStub{}, nil, nil)

	req := createSlotRequest()
	req.GenerateLessons = true
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSlotCreateKeepsSlotWhenGenerationFails(t *testing.T) {
	store := newSlotStoreStub()
	generator := &slotGeneratorStub{err: appErrors.Clone(appErrors.ErrPreconditionFailed, "no active semester configured")}
	svc := NewScheduleSlotService(store, &slotValidatorStub{validation: models.SlotValidation{OK: true}}, generator, nil, nil)

	req := createSlotRequest()
	req.GenerateLessons = true
	req.Generation = &dto.GenerationOptions{RangeType: RangeTypeSemesterEnd}
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	// The stored slot survives so generation can be retried on its own.
	require.Len(t, store.created, 1)
	assert.Equal(t, 1, generator.calls)
}

func TestSlotCreateRunsGenerationInline(t *testing.T) {
	store := newSlotStoreStub()
	generator := &slotGeneratorStub{summary: &dto.GenerationSummary{TotalGenerated: 14, SkippedHolidays: 1}}
	svc := NewScheduleSlotService(store, &slotValidatorStub{validation: models.SlotValidation{OK: true}}, generator, nil, nil)

	req := createSlotRequest()
	req.GenerateLessons = true
	req.Generation = &dto.GenerationOptions{RangeType: RangeTypeSemesterEnd, SkipHolidays: true}
	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Generation)
	assert.Equal(t, 14, resp.Generation.TotalGenerated)
	assert.Equal(t, 1, resp.Generation.SkippedHolidays)
}

func TestSlotUpdateRefusesArchivedSlot(t *testing.T) {
	store := newSlotStoreStub()
	store.slots["slot-1"] = &models.ScheduleSlot{ID: "slot-1", ClassID: "class-1", Archived: true}
	svc := NewScheduleSlotService(store, &slotValidatorStub{validation: models.SlotValidation{OK: true}}, &slotGeneratorStub{}, nil, nil)

	_, _, err := svc.Update(context.Background(), "slot-1", dto.UpdateScheduleSlotRequest{
		DayOfWeek: "TUESDAY",
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.updated)
}

func TestSlotUpdateAppliesNewWindow(t *testing.T) {
	store := newSlotStoreStub()
	store.slots["slot-1"] = &models.ScheduleSlot{
		ID:        "slot-1",
		ClassID:   "class-1",
		DayOfWeek: "MONDAY",
		StartTime: "10:00",
		EndTime:   "11:30",
	}
	svc := NewScheduleSlotService(store, &slotValidatorStub{validation: models.SlotValidation{OK: true}}, &slotGeneratorStub{}, nil, nil)

	slot, warnings, err := svc.Update(context.Background(), "slot-1", dto.UpdateScheduleSlotRequest{
		DayOfWeek: "wednesday",
		StartTime: "13:00",
		EndTime:   "14:30",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "WEDNESDAY", slot.DayOfWeek)
	assert.Equal(t, "13:00", slot.StartTime)
	assert.Equal(t, "14:30", slot.EndTime)
	require.Len(t, store.updated, 1)
}

func TestSlotGenerateUnknownSlot(t *testing.T) {
	svc := NewScheduleSlotService(newSlotStoreStub(), &slotValidatorStub{validation: models.SlotValidation{OK: true}}, &slotGeneratorStub{}, nil, nil)

	_, err := svc.Generate(context.Background(), "missing", dto.GenerationOptions{RangeType: RangeTypeSemesterEnd})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSlotGenerateRefusesArchivedSlot(t *testing.T) {
	store := newSlotStoreStub()
	store.slots["slot-1"] = &models.ScheduleSlot{ID: "slot-1", ClassID: "class-1", Archived: true}
	generator := &slotGeneratorStub{}
	svc := NewScheduleSlotService(store, &slotValidatorStub{validation: models.SlotValidation{OK: true}}, generator, nil, nil)

	_, err := svc.Generate(context.Background(), "slot-1", dto.GenerationOptions{RangeType: RangeTypeSemesterEnd})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, generator.calls)
}

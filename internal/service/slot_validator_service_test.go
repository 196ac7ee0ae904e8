package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/pkg/config"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type slotReaderStub struct {
	own    []models.ScheduleSlot
	shared []models.ScheduleSlot
	err    error
}

func (s slotReaderStub) ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error) {
	return s.own, s.err
}

func (s slotReaderStub) ListSharingResources(ctx context.Context, classID, teacherID, room string) ([]models.ScheduleSlot, error) {
	return s.shared, s.err
}

func schedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		DayStart:        "07:00",
		DayEnd:          "21:00",
		SuggestionStep:  30 * time.Minute,
		SuggestionLimit: 3,
	}
}

func twoClasses() map[string]models.Class {
	return map[string]models.Class{
		"class-1": {ID: "class-1", TeacherID: "teacher-1", Room: "R1"},
		"class-2": {ID: "class-2", TeacherID: "teacher-1", Room: "R2"},
		"class-3": {ID: "class-3", TeacherID: "teacher-9", Room: "R1"},
	}
}

func TestSlotValidatorHardOverlapSameClass(t *testing.T) {
	existing := models.ScheduleSlot{ID: "slot-1", ClassID: "class-1", DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "12:00"}
	svc := NewSlotValidatorService(slotReaderStub{own: []models.ScheduleSlot{existing}}, classReaderStub{classes: twoClasses()}, schedulingConfig(), nil, nil)

	result, err := svc.Validate(context.Background(), "class-1", "MONDAY", "11:00", "13:00", "")
	require.NoError(t, err)
	assert.False(t, result.OK)
	require.NotNil(t, result.Overlapping)
	assert.Equal(t, "slot-1", result.Overlapping.ID)
}

func TestSlotValidatorExcludesSlotBeingEdited(t *testing.T) {
	existing := models.ScheduleSlot{ID: "slot-1", ClassID: "class-1", DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "12:00"}
	svc := NewSlotValidatorService(slotReaderStub{own: []models.ScheduleSlot{existing}}, classReaderStub{classes: twoClasses()}, schedulingConfig(), nil, nil)

	result, err := svc.Validate(context.Background(), "class-1", "MONDAY", "10:00", "12:00", "slot-1")
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestSlotValidatorTouchingWindowsDoNotOverlap(t *testing.T) {
	existing := models.ScheduleSlot{ID: "slot-1", ClassID: "class-1", DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "12:00"}
	svc := NewSlotValidatorService(slotReaderStub{own: []models.ScheduleSlot{existing}}, classReaderStub{classes: twoClasses()}, schedulingConfig(), nil, nil)

	result, err := svc.Validate(context.Background(), "class-1", "MONDAY", "12:00", "14:00", "")
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestSlotValidatorSharedResourceWarnings(t *testing.T) {
	shared := []models.ScheduleSlot{
		{ID: "slot-t", ClassID: "class-2", DayOfWeek: "MONDAY", StartTime: "10:30", EndTime: "11:30"},
		{ID: "slot-r", ClassID: "class-3", DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "11:00"},
		{ID: "slot-other-day", ClassID: "class-2", DayOfWeek: "TUESDAY", StartTime: "10:00", EndTime: "11:00"},
	}
	svc := NewSlotValidatorService(slotReaderStub{shared: shared}, classReaderStub{classes: twoClasses()}, schedulingConfig(), nil, nil)

	result, err := svc.Validate(context.Background(), "class-1", "MONDAY", "10:00", "11:00", "")
	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, models.ConflictDimensionTeacher, result.Warnings[0].Dimension)
	assert.Equal(t, models.ConflictDimensionRoom, result.Warnings[1].Dimension)
}

func TestSlotValidatorRepoFailure(t *testing.T) {
	svc := NewSlotValidatorService(slotReaderStub{err: errors.New("connection refused")}, classReaderStub{classes: twoClasses()}, schedulingConfig(), nil, nil)

	_, err := svc.Validate(context.Background(), "class-1", "MONDAY", "10:00", "11:00", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
}

func TestSlotValidatorSuggestionsAreDeterministic(t *testing.T) {
	busy := models.ScheduleSlot{ID: "slot-1", ClassID: "class-1", DayOfWeek: "MONDAY", StartTime: "07:00", EndTime: "09:00"}
	svc := NewSlotValidatorService(slotReaderStub{own: []models.ScheduleSlot{busy}}, classReaderStub{classes: twoClasses()}, schedulingConfig(), nil, nil)

	suggestions, err := svc.SuggestAlternatives(context.Background(), dto.SlotSuggestionRequest{
		ClassID:   "class-1",
		DayOfWeek: "MONDAY",
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	// Earliest free grid positions on Monday, skipping the busy block and
	// the candidate's own window.
	assert.Equal(t, models.SlotSuggestion{DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "10:00"}, suggestions[0])
	assert.Equal(t, models.SlotSuggestion{DayOfWeek: "MONDAY", StartTime: "09:30", EndTime: "10:30"}, suggestions[1])
	assert.Equal(t, models.SlotSuggestion{DayOfWeek: "MONDAY", StartTime: "10:30", EndTime: "11:30"}, suggestions[2])
}

func TestSlotValidatorSuggestionsHonorRequestLimit(t *testing.T) {
	svc := NewSlotValidatorService(slotReaderStub{}, classReaderStub{classes: twoClasses()}, schedulingConfig(), nil, nil)

	suggestions, err := svc.SuggestAlternatives(context.Background(), dto.SlotSuggestionRequest{
		ClassID:   "class-1",
		DayOfWeek: "MONDAY",
		StartTime: "10:00",
		EndTime:   "11:30",
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Len(t, suggestions, 5)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type conflictLessonStub struct {
	lessons []models.Lesson
	err     error
}

func (s conflictLessonStub) FindOverlapping(ctx context.Context, date time.Time, startTime, endTime, classID, teacherID, room, excludeID string) ([]models.Lesson, error) {
	return s.lessons, s.err
}

type classReaderStub struct {
	classes map[string]models.Class
	err     error
}

func (s classReaderStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if s.err != nil {
		return nil, s.err
	}
	if class, ok := s.classes[id]; ok {
		return &class, nil
	}
	return nil, sql.ErrNoRows
}

func mathClass() map[string]models.Class {
	return map[string]models.Class{
		"class-1": {ID: "class-1", Name: "Math A", TeacherID: "teacher-1", Room: "R1"},
	}
}

func checkRequest() dto.ConflictCheckRequest {
	return dto.ConflictCheckRequest{
		ClassID:       "class-1",
		ScheduledDate: "2026-09-04",
		StartTime:     "10:00",
		EndTime:       "11:00",
	}
}

func TestConflictServiceCheckClear(t *testing.T) {
	svc := NewConflictService(conflictLessonStub{}, classReaderStub{classes: mathClass()}, nil, nil, nil)

	resp, err := svc.Check(context.Background(), checkRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Conflicts)
	assert.Empty(t, resp.Suggestions)
}

func TestConflictServiceDimensionPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		lesson models.Lesson
		want   models.ConflictDimension
	}{
		{
			name:   "same class wins even when teacher and room also match",
			lesson: models.Lesson{ID: "l1", ClassID: "class-1", TeacherID: "teacher-1", Room: "R1"},
			want:   models.ConflictDimensionClass,
		},
		{
			name:   "teacher beats room",
			lesson: models.Lesson{ID: "l2", ClassID: "class-2", TeacherID: "teacher-1", Room: "R1"},
			want:   models.ConflictDimensionTeacher,
		},
		{
			name:   "room only",
			lesson: models.Lesson{ID: "l3", ClassID: "class-2", TeacherID: "teacher-2", Room: "R1"},
			want:   models.ConflictDimensionRoom,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewConflictService(conflictLessonStub{lessons: []models.Lesson{tc.lesson}}, classReaderStub{classes: mathClass()}, nil, nil, nil)
			resp, err := svc.Check(context.Background(), checkRequest())
			require.NoError(t, err)
			require.Len(t, resp.Conflicts, 1)
			assert.Equal(t, tc.want, resp.Conflicts[0].Dimension)
		})
	}
}

func TestConflictServiceSuggestionsSkipWeekend(t *testing.T) {
	lesson := models.Lesson{ID: "l1", ClassID: "class-1", TeacherID: "teacher-1", Room: "R1"}
	svc := NewConflictService(conflictLessonStub{lessons: []models.Lesson{lesson}}, classReaderStub{classes: mathClass()}, nil, nil, nil)

	// 2026-09-04 is a Friday; the next weekday is Monday the 7th.
	resp, err := svc.Check(context.Background(), checkRequest())
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "2026-09-07", resp.Suggestions[0].ScheduledDate)
	assert.Equal(t, "2026-09-11", resp.Suggestions[1].ScheduledDate)
	assert.Equal(t, "10:00", resp.Suggestions[0].StartTime)
	assert.Equal(t, "11:00", resp.Suggestions[0].EndTime)
}

func TestConflictServiceRepoFailureIsNotAClearReport(t *testing.T) {
	svc := NewConflictService(conflictLessonStub{err: errors.New("connection refused")}, classReaderStub{classes: mathClass()}, nil, nil, nil)

	resp, err := svc.Check(context.Background(), checkRequest())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
}

func TestConflictServiceUnknownClass(t *testing.T) {
	svc := NewConflictService(conflictLessonStub{}, classReaderStub{}, nil, nil, nil)

	req := checkRequest()
	req.ClassID = "missing"
	_, err := svc.Check(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestConflictServiceRejectsInvertedWindow(t *testing.T) {
	svc := NewConflictService(conflictLessonStub{}, classReaderStub{classes: mathClass()}, nil, nil, nil)

	req := checkRequest()
	req.StartTime = "11:00"
	req.EndTime = "10:00"
	_, err := svc.Check(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

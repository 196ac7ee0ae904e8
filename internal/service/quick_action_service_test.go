package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type lifecycleRecorder struct {
	conducted    []string
	cancelled    []string
	noShows      []string
	rescheduled  []string
	lastCancel   dto.CancelLessonRequest
	lastSchedule dto.RescheduleLessonRequest
}

func (r *lifecycleRecorder) Conduct(ctx context.Context, id string, req dto.ConductLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	r.conducted = append(r.conducted, id)
	return &dto.LessonMutationResponse{}, nil
}

func (r *lifecycleRecorder) Cancel(ctx context.Context, id string, req dto.CancelLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	r.cancelled = append(r.cancelled, id)
	r.lastCancel = req
	return &dto.LessonMutationResponse{}, nil
}

func (r *lifecycleRecorder) NoShow(ctx context.Context, id string, actor Actor) (*dto.LessonMutationResponse, error) {
	r.noShows = append(r.noShows, id)
	return &dto.LessonMutationResponse{}, nil
}

func (r *lifecycleRecorder) Reschedule(ctx context.Context, id string, req dto.RescheduleLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	r.rescheduled = append(r.rescheduled, id)
	r.lastSchedule = req
	return &dto.LessonMutationResponse{}, nil
}

func TestQuickActionDispatch(t *testing.T) {
	recorder := &lifecycleRecorder{}
	refreshed := 0
	svc := NewQuickActionService(recorder, func(ctx context.Context) { refreshed++ }, nil, nil)

	_, err := svc.Execute(context.Background(), "l1", dto.QuickActionRequest{Action: QuickActionConduct, Notes: "done"}, Actor{})
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), "l2", dto.QuickActionRequest{
		Action: QuickActionCancel,
		Reason: "sick",
		Makeup: &dto.MakeupData{ScheduledDate: "2026-09-10", StartTime: "14:00", EndTime: "15:00"},
	}, Actor{})
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), "l3", dto.QuickActionRequest{Action: QuickActionNoShow}, Actor{})
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), "l4", dto.QuickActionRequest{
		Action:        QuickActionReschedule,
		ScheduledDate: "2026-09-11",
		StartTime:     "09:00",
		EndTime:       "10:00",
		Force:         true,
	}, Actor{})
	require.NoError(t, err)

	assert.Equal(t, []string{"l1"}, recorder.conducted)
	assert.Equal(t, []string{"l2"}, recorder.cancelled)
	assert.Equal(t, "sick", recorder.lastCancel.Reason)
	require.NotNil(t, recorder.lastCancel.Makeup)
	assert.Equal(t, []string{"l3"}, recorder.noShows)
	assert.Equal(t, []string{"l4"}, recorder.rescheduled)
	assert.True(t, recorder.lastSchedule.Force)
	assert.Equal(t, 4, refreshed)
}

func TestQuickActionRejectsUnknownAction(t *testing.T) {
	recorder := &lifecycleRecorder{}
	refreshed := 0
	svc := NewQuickActionService(recorder, func(ctx context.Context) { refreshed++ }, nil, nil)

	_, err := svc.Execute(context.Background(), "l1", dto.QuickActionRequest{Action: "ARCHIVE"}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, refreshed)
}

func TestQuickActionPropagatesLifecycleError(t *testing.T) {
	refreshed := 0
	svc := NewQuickActionService(failingLifecycle{}, func(ctx context.Context) { refreshed++ }, nil, nil)

	_, err := svc.Execute(context.Background(), "l1", dto.QuickActionRequest{Action: QuickActionConduct}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, refreshed)
}

type failingLifecycle struct{}

func (failingLifecycle) Conduct(ctx context.Context, id string, req dto.ConductLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "lesson status CANCELLED does not allow CONDUCTED")
}

func (failingLifecycle) Cancel(ctx context.Context, id string, req dto.CancelLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	return nil, appErrors.ErrPreconditionFailed
}

func (failingLifecycle) NoShow(ctx context.Context, id string, actor Actor) (*dto.LessonMutationResponse, error) {
	return nil, appErrors.ErrPreconditionFailed
}

func (failingLifecycle) Reschedule(ctx context.Context, id string, req dto.RescheduleLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	return nil, appErrors.ErrPreconditionFailed
}

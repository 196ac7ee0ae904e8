package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

// Quick action names accepted from the lesson list.
const (
	QuickActionConduct    = "CONDUCT"
	QuickActionCancel     = "CANCEL"
	QuickActionNoShow     = "NO_SHOW"
	QuickActionReschedule = "RESCHEDULE"
)

type quickActionLifecycle interface {
	Conduct(ctx context.Context, id string, req dto.ConductLessonRequest, actor Actor) (*dto.LessonMutationResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelLessonRequest, actor Actor) (*dto.LessonMutationResponse, error)
	NoShow(ctx context.Context, id string, actor Actor) (*dto.LessonMutationResponse, error)
	Reschedule(ctx context.Context, id string, req dto.RescheduleLessonRequest, actor Actor) (*dto.LessonMutationResponse, error)
}

// RefreshNotifier is invoked after every successful quick action so list
// consumers can re-query.
type RefreshNotifier func(ctx context.Context)

// QuickActionService maps the lesson list's one-click actions onto the
// lifecycle operations and fans out a refresh signal afterwards.
type QuickActionService struct {
	lifecycle quickActionLifecycle
	notify    RefreshNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuickActionService instantiates QuickActionService. notify may be nil.
func NewQuickActionService(lifecycle quickActionLifecycle, notify RefreshNotifier, validate *validator.Validate, logger *zap.Logger) *QuickActionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuickActionService{lifecycle: lifecycle, notify: notify, validator: validate, logger: logger}
}

// Execute dispatches the quick action to its lifecycle operation.
func (s *QuickActionService) Execute(ctx context.Context, lessonID string, req dto.QuickActionRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quick action payload")
	}

	var (
		resp *dto.LessonMutationResponse
		err  error
	)
	switch req.Action {
	case QuickActionConduct:
		resp, err = s.lifecycle.Conduct(ctx, lessonID, dto.ConductLessonRequest{Notes: req.Notes}, actor)
	case QuickActionCancel:
		resp, err = s.lifecycle.Cancel(ctx, lessonID, dto.CancelLessonRequest{Reason: req.Reason, Makeup: req.Makeup}, actor)
	case QuickActionNoShow:
		resp, err = s.lifecycle.NoShow(ctx, lessonID, actor)
	case QuickActionReschedule:
		resp, err = s.lifecycle.Reschedule(ctx, lessonID, dto.RescheduleLessonRequest{
			ScheduledDate: req.ScheduledDate,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			Force:         req.Force,
		}, actor)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown quick action")
	}
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify(ctx)
	}
	s.logger.Info("quick action executed",
		zap.String("lesson_id", lessonID),
		zap.String("action", req.Action))
	return resp, nil
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/internal/repository"
	"github.com/sapta-dev/bimbel-admin-api/internal/timeutil"
	"github.com/sapta-dev/bimbel-admin-api/pkg/config"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

// lessonTransitions is the closed state machine for lesson statuses.
// Terminal states have no outgoing edges; edits within a state (notes,
// grace-period window changes) are not transitions.
var lessonTransitions = map[models.LessonStatus][]models.LessonStatus{
	models.LessonStatusScheduled: {models.LessonStatusConducted, models.LessonStatusCancelled, models.LessonStatusNoShow},
	models.LessonStatusMakeUp:    {models.LessonStatusConducted, models.LessonStatusCancelled, models.LessonStatusNoShow},
	models.LessonStatusConducted: {},
	models.LessonStatusCancelled: {},
	models.LessonStatusNoShow:    {},
}

func canTransition(from, to models.LessonStatus) bool {
	for _, allowed := range lessonTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Actor identifies who performed a lifecycle action, for the audit trail.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

type lifecycleLessonStore interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error
	SetMakeupLink(ctx context.Context, tx *sqlx.Tx, sourceID, makeupID string) error
	Delete(ctx context.Context, id string) error
}

type lifecycleClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type lessonCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateLessonLists(ctx context.Context) error
}

type auditRecorder interface {
	Record(entry models.AuditLog)
}

// LessonLifecycleService owns every status change a lesson can go through
// plus the edit-locking rules around conducted lessons.
type LessonLifecycleService struct {
	lessons   lifecycleLessonStore
	classes   lifecycleClassReader
	conflicts conflictChecker
	cache     lessonCache
	audit     auditRecorder
	cfg       config.SchedulingConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLessonLifecycleService instantiates LessonLifecycleService. cache and
// audit may be nil.
func NewLessonLifecycleService(lessons lifecycleLessonStore, classes lifecycleClassReader, conflicts conflictChecker, cache lessonCache, audit auditRecorder, cfg config.SchedulingConfig, validate *validator.Validate, logger *zap.Logger) *LessonLifecycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonLifecycleService{
		lessons:   lessons,
		classes:   classes,
		conflicts: conflicts,
		cache:     cache,
		audit:     audit,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

type cachedLessonList struct {
	Lessons []models.Lesson `json:"lessons"`
	Total   int             `json:"total"`
}

// List returns lesson views for the filter. The raw rows round-trip through
// the cache; the derived indicators are always computed at read time.
func (s *LessonLifecycleService) List(ctx context.Context, filter models.LessonFilter) ([]dto.LessonView, *models.Pagination, error) {
	key := lessonListCacheKey(filter)
	var payload cachedLessonList
	hit := false
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &payload); err == nil {
			hit = true
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("lesson list cache read failed", zap.Error(err))
		}
	}

	if !hit {
		lessons, total, err := s.lessons.List(ctx, filter)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
		}
		payload = cachedLessonList{Lessons: lessons, Total: total}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, payload, s.cfg.LessonCacheTTL); err != nil {
				s.logger.Warn("lesson list cache write failed", zap.Error(err))
			}
		}
	}

	now := s.now()
	views := make([]dto.LessonView, 0, len(payload.Lessons))
	for _, lesson := range payload.Lessons {
		views = append(views, dto.NewLessonView(lesson, now))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return views, &models.Pagination{Page: page, PageSize: size, TotalCount: payload.Total}, nil
}

// Get loads a single lesson view.
func (s *LessonLifecycleService) Get(ctx context.Context, id string) (*dto.LessonView, error) {
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	view := dto.NewLessonView(*lesson, s.now())
	return &view, nil
}

// Create stores a single ad-hoc lesson after a conflict check. Force
// overrides soft (other class) conflicts only; a same-class collision always
// blocks.
func (s *LessonLifecycleService) Create(ctx context.Context, req dto.CreateLessonRequest) (*dto.LessonView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	if err := s.ensureWindowFree(ctx, req.ClassID, req.ScheduledDate, window, "", req.Force); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		ClassID:       class.ID,
		TeacherID:     class.TeacherID,
		Room:          class.Room,
		ScheduledDate: timeutil.DateOnly(date),
		StartTime:     window.Start.String(),
		EndTime:       window.End.String(),
		Status:        models.LessonStatusScheduled,
	}
	if req.Notes != "" {
		lesson.Notes = &req.Notes
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	s.invalidateLists(ctx)

	view := dto.NewLessonView(*lesson, s.now())
	return &view, nil
}

// Conduct marks an actionable lesson as held. The lesson may be conducted
// from its grace window before start time onward; earlier attempts are
// rejected so a misclick cannot conduct next week's lesson.
func (s *LessonLifecycleService) Conduct(ctx context.Context, id string, req dto.ConductLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(lesson.Status, models.LessonStatusConducted) {
		return nil, statusTransitionError(lesson.Status, models.LessonStatusConducted)
	}

	now := s.now()
	earliest := lesson.StartsAt().Add(-s.cfg.ConductGraceWindow)
	if now.Before(earliest) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("lesson cannot be conducted before %s", earliest.Format("2006-01-02 15:04")))
	}

	before := *lesson
	lesson.Status = models.LessonStatusConducted
	lesson.ConductedAt = &now
	if req.Notes != "" {
		lesson.Notes = &req.Notes
	}
	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to conduct lesson")
	}
	s.invalidateLists(ctx)
	s.recordAudit(actor, models.AuditActionLessonConduct, lesson.ID, &before, lesson)

	return &dto.LessonMutationResponse{Lesson: dto.NewLessonView(*lesson, now)}, nil
}

// Cancel cancels an actionable lesson. When makeup data is supplied, the
// replacement lesson and the link pair commit in the same transaction as the
// cancellation.
func (s *LessonLifecycleService) Cancel(ctx context.Context, id string, req dto.CancelLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancel payload")
	}
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(lesson.Status, models.LessonStatusCancelled) {
		return nil, statusTransitionError(lesson.Status, models.LessonStatusCancelled)
	}

	var makeup *models.Lesson
	if req.Makeup != nil {
		makeup, err = s.buildMakeup(ctx, lesson, *req.Makeup)
		if err != nil {
			return nil, err
		}
	}

	before := *lesson
	now := s.now()
	lesson.Status = models.LessonStatusCancelled
	lesson.CancellationReason = &req.Reason

	tx, err := s.lessons.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start cancellation transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.lessons.UpdateTx(ctx, tx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel lesson")
	}
	if makeup != nil {
		if err = s.lessons.CreateTx(ctx, tx, makeup); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create makeup lesson")
		}
		if err = s.lessons.SetMakeupLink(ctx, tx, lesson.ID, makeup.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "lesson already has a makeup lesson")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link makeup lesson")
		}
		lesson.MakeupLessonID = &makeup.ID
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit cancellation")
	}

	s.invalidateLists(ctx)
	s.recordAudit(actor, models.AuditActionLessonCancel, lesson.ID, &before, lesson)

	return &dto.LessonMutationResponse{
		Lesson: dto.NewLessonView(*lesson, now),
		Makeup: makeup,
	}, nil
}

// NoShow marks an actionable lesson as a no-show.
func (s *LessonLifecycleService) NoShow(ctx context.Context, id string, actor Actor) (*dto.LessonMutationResponse, error) {
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(lesson.Status, models.LessonStatusNoShow) {
		return nil, statusTransitionError(lesson.Status, models.LessonStatusNoShow)
	}

	before := *lesson
	lesson.Status = models.LessonStatusNoShow
	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark no-show")
	}
	s.invalidateLists(ctx)
	s.recordAudit(actor, models.AuditActionLessonNoShow, lesson.ID, &before, lesson)

	return &dto.LessonMutationResponse{Lesson: dto.NewLessonView(*lesson, s.now())}, nil
}

// Delete removes a lesson that never happened. Only plain SCHEDULED lessons
// qualify; anything with history (conducted, cancelled, no-show, make-up)
// stays on record.
func (s *LessonLifecycleService) Delete(ctx context.Context, id string, actor Actor) error {
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return err
	}
	if lesson.Status != models.LessonStatusScheduled {
		return appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("only scheduled lessons can be deleted, status is %s", lesson.Status))
	}

	if err := s.lessons.Delete(ctx, lesson.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	s.invalidateLists(ctx)
	s.recordAudit(actor, models.AuditActionLessonDelete, lesson.ID, lesson, nil)

	return nil
}

// Reschedule moves an actionable lesson to a new date and window after a
// conflict check that excludes the lesson itself.
func (s *LessonLifecycleService) Reschedule(ctx context.Context, id string, req dto.RescheduleLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lesson.Status.Actionable() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("lesson in status %s cannot be rescheduled", lesson.Status))
	}

	window, err := timeutil.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}
	date, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduled date")
	}

	if err := s.ensureWindowFree(ctx, lesson.ClassID, req.ScheduledDate, window, lesson.ID, req.Force); err != nil {
		return nil, err
	}

	before := *lesson
	lesson.ScheduledDate = timeutil.DateOnly(date)
	lesson.StartTime = window.Start.String()
	lesson.EndTime = window.End.String()
	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reschedule lesson")
	}
	s.invalidateLists(ctx)
	s.recordAudit(actor, models.AuditActionLessonReschedule, lesson.ID, &before, lesson)

	return &dto.LessonMutationResponse{Lesson: dto.NewLessonView(*lesson, s.now())}, nil
}

// Edit updates a lesson's window and notes. A changed window is conflict
// checked against the rest of the schedule. Conducted lessons lock once
// their calendar day has passed; on the day itself the edit goes through but
// leaves an audit record.
func (s *LessonLifecycleService) Edit(ctx context.Context, id string, req dto.EditLessonRequest, actor Actor) (*dto.LessonMutationResponse, error) {
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if lesson.LockedAt(now) {
		return nil, appErrors.Clone(appErrors.ErrLessonLocked,
			"conducted lessons lock after their scheduled date")
	}
	grace := lesson.InGracePeriodAt(now)
	if !grace && !lesson.Status.Actionable() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("lesson in status %s cannot be edited", lesson.Status))
	}

	before := *lesson
	start := lesson.StartTime
	end := lesson.EndTime
	if req.StartTime != "" {
		start = req.StartTime
	}
	if req.EndTime != "" {
		end = req.EndTime
	}
	window, err := timeutil.NewTimeRange(start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}
	if window.Start.String() != before.StartTime || window.End.String() != before.EndTime {
		date := before.ScheduledDate.Format("2006-01-02")
		if err := s.ensureWindowFree(ctx, lesson.ClassID, date, window, lesson.ID, false); err != nil {
			return nil, err
		}
	}
	lesson.StartTime = window.Start.String()
	lesson.EndTime = window.End.String()
	if req.Notes != nil {
		lesson.Notes = req.Notes
	}

	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to edit lesson")
	}
	s.invalidateLists(ctx)

	if grace {
		s.recordAudit(actor, models.AuditActionLessonGraceEdit, lesson.ID, &before, lesson)
	}

	return &dto.LessonMutationResponse{
		Lesson:  dto.NewLessonView(*lesson, now),
		Audited: grace,
	}, nil
}

// CreateMakeup attaches a replacement lesson to an already cancelled lesson
// that has no makeup yet. The insert and the link commit atomically.
func (s *LessonLifecycleService) CreateMakeup(ctx context.Context, sourceID string, data dto.MakeupData) (*dto.LessonMutationResponse, error) {
	if err := s.validator.Struct(data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid makeup payload")
	}
	source, err := s.findLesson(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source.Status != models.LessonStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "makeup lessons attach to cancelled lessons only")
	}
	if source.MakeupLessonID != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "lesson already has a makeup lesson")
	}

	makeup, err := s.buildMakeup(ctx, source, data)
	if err != nil {
		return nil, err
	}

	tx, err := s.lessons.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start makeup transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.lessons.CreateTx(ctx, tx, makeup); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create makeup lesson")
	}
	if err = s.lessons.SetMakeupLink(ctx, tx, source.ID, makeup.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "lesson already has a makeup lesson")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link makeup lesson")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit makeup lesson")
	}

	source.MakeupLessonID = &makeup.ID
	s.invalidateLists(ctx)

	return &dto.LessonMutationResponse{
		Lesson: dto.NewLessonView(*source, s.now()),
		Makeup: makeup,
	}, nil
}

// buildMakeup derives the replacement lesson from its source and conflict
// checks its window before any caller commits it. The makeup carries a
// back-reference to the source and its original date.
func (s *LessonLifecycleService) buildMakeup(ctx context.Context, source *models.Lesson, data dto.MakeupData) (*models.Lesson, error) {
	window, err := timeutil.NewTimeRange(data.StartTime, data.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid makeup time window")
	}
	date, err := time.Parse("2006-01-02", data.ScheduledDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid makeup date")
	}
	// The source does not count as a collision: in the cancel-with-makeup
	// flow it is still scheduled while the check runs.
	if err := s.ensureWindowFree(ctx, source.ClassID, data.ScheduledDate, window, source.ID, false); err != nil {
		return nil, err
	}

	originalDate := timeutil.DateOnly(source.ScheduledDate)
	return &models.Lesson{
		ID:                 uuid.NewString(),
		ClassID:            source.ClassID,
		TeacherID:          source.TeacherID,
		Room:               source.Room,
		ScheduledDate:      timeutil.DateOnly(date),
		StartTime:          window.Start.String(),
		EndTime:            window.End.String(),
		Status:             models.LessonStatusMakeUp,
		OriginalLessonID:   &source.ID,
		OriginalLessonDate: &originalDate,
	}, nil
}

// ensureWindowFree runs a conflict check and applies the override rules:
// same-class conflicts always block, cross-class conflicts block unless
// force is set.
func (s *LessonLifecycleService) ensureWindowFree(ctx context.Context, classID, scheduledDate string, window timeutil.TimeRange, excludeID string, force bool) error {
	if s.conflicts == nil {
		return nil
	}
	report, err := s.conflicts.Check(ctx, dto.ConflictCheckRequest{
		ClassID:         classID,
		ScheduledDate:   scheduledDate,
		StartTime:       window.Start.String(),
		EndTime:         window.End.String(),
		ExcludeLessonID: excludeID,
	})
	if err != nil {
		return err
	}

	var blocking []models.LessonConflict
	for _, conflict := range report.Conflicts {
		if conflict.Dimension == models.ConflictDimensionClass || !force {
			blocking = append(blocking, conflict)
		}
	}
	if len(blocking) == 0 {
		return nil
	}
	conflictErr := &models.LessonConflictError{
		Message:   fmt.Sprintf("time window collides with %d existing lesson(s)", len(blocking)),
		Conflicts: blocking,
	}
	return appErrors.Wrap(conflictErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflictErr.Message)
}

func (s *LessonLifecycleService) findLesson(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

func (s *LessonLifecycleService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLessonLists(ctx); err != nil {
		s.logger.Warn("lesson list cache invalidation failed", zap.Error(err))
	}
}

func (s *LessonLifecycleService) recordAudit(actor Actor, action, lessonID string, before, after *models.Lesson) {
	if s.audit == nil {
		return
	}
	oldValues, _ := json.Marshal(before)
	newValues, _ := json.Marshal(after)
	entry := models.AuditLog{
		Action:     action,
		Resource:   "lesson",
		ResourceID: &lessonID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if actor.UserID != "" {
		userID := actor.UserID
		entry.UserID = &userID
	}
	s.audit.Record(entry)
}

func statusTransitionError(from, to models.LessonStatus) error {
	return appErrors.Clone(appErrors.ErrPreconditionFailed,
		fmt.Sprintf("lesson status %s does not allow %s", from, to))
}

func lessonListCacheKey(filter models.LessonFilter) string {
	from, to := "", ""
	if filter.DateFrom != nil {
		from = filter.DateFrom.Format("2006-01-02")
	}
	if filter.DateTo != nil {
		to = filter.DateTo.Format("2006-01-02")
	}
	return fmt.Sprintf("%sc=%s:t=%s:s=%s:st=%s:f=%s:u=%s:p=%d:n=%d:o=%s_%s",
		repository.LessonCachePrefix,
		filter.ClassID, filter.TeacherID, filter.SemesterID, filter.Status,
		from, to, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}

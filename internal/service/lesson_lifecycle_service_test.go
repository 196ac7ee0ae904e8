package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/pkg/config"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
)

type lifecycleStoreStub struct {
	db      *sqlx.DB
	lessons map[string]models.Lesson
	listed  []models.Lesson
	lists   int
}

func newLifecycleStoreStub(t *testing.T) (*lifecycleStoreStub, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &lifecycleStoreStub{db: sqlxdb, lessons: map[string]models.Lesson{}}, mock
}

func (s *lifecycleStoreStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return s.db.BeginTxx(ctx, opts)
}

func (s *lifecycleStoreStub) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	s.lists++
	return s.listed, len(s.listed), nil
}

func (s *lifecycleStoreStub) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if lesson, ok := s.lessons[id]; ok {
		return &lesson, nil
	}
	return nil, sql.ErrNoRows
}

func (s *lifecycleStoreStub) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = "generated"
	}
	s.lessons[lesson.ID] = *lesson
	return nil
}

func (s *lifecycleStoreStub) CreateTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
	return s.Create(ctx, lesson)
}

func (s *lifecycleStoreStub) Update(ctx context.Context, lesson *models.Lesson) error {
	s.lessons[lesson.ID] = *lesson
	return nil
}

func (s *lifecycleStoreStub) UpdateTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
	return s.Update(ctx, lesson)
}

func (s *lifecycleStoreStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.lessons[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.lessons, id)
	return nil
}

func (s *lifecycleStoreStub) SetMakeupLink(ctx context.Context, tx *sqlx.Tx, sourceID, makeupID string) error {
	source, ok := s.lessons[sourceID]
	if !ok || source.MakeupLessonID != nil {
		return sql.ErrNoRows
	}
	source.MakeupLessonID = &makeupID
	s.lessons[sourceID] = source
	return nil
}

type auditStub struct {
	entries []models.AuditLog
}

func (s *auditStub) Record(entry models.AuditLog) {
	s.entries = append(s.entries, entry)
}

type cacheStub struct {
	invalidations int
	store         map[string][]byte
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (s *cacheStub) InvalidateLessonLists(ctx context.Context) error {
	s.invalidations++
	return nil
}

func lessonFixture(id string, status models.LessonStatus, day string) models.Lesson {
	return models.Lesson{
		ID:            id,
		ClassID:       "class-1",
		TeacherID:     "teacher-1",
		Room:          "R1",
		ScheduledDate: date(day),
		StartTime:     "10:00",
		EndTime:       "11:30",
		Status:        status,
	}
}

type lifecycleHarness struct {
	svc   *LessonLifecycleService
	store *lifecycleStoreStub
	mock  sqlmock.Sqlmock
	audit *auditStub
	cache *cacheStub
}

func newLifecycleHarness(t *testing.T, now string, checker conflictChecker) *lifecycleHarness {
	t.Helper()
	store, mock := newLifecycleStoreStub(t)
	audit := &auditStub{}
	cache := &cacheStub{}
	svc := NewLessonLifecycleService(store, classReaderStub{classes: mathClass()}, checker, cache, audit,
		config.SchedulingConfig{ConductGraceWindow: 15 * time.Minute, LessonCacheTTL: 2 * time.Minute}, nil, nil)
	svc.now = func() time.Time { return mustParseInstant(now) }
	return &lifecycleHarness{svc: svc, store: store, mock: mock, audit: audit, cache: cache}
}

func mustParseInstant(value string) time.Time {
	instant, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return instant.UTC()
}

func TestLifecycleConductRespectsGraceWindow(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 09:50", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	resp, err := h.svc.Conduct(context.Background(), "l1", dto.ConductLessonRequest{Notes: "covered chapter 3"}, Actor{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.LessonStatusConducted, resp.Lesson.Status)
	require.NotNil(t, resp.Lesson.ConductedAt)
	assert.Equal(t, 1, h.cache.invalidations)
	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, models.AuditActionLessonConduct, h.audit.entries[0].Action)
}

func TestLifecycleConductTooEarlyIsRejected(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 09:30", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	_, err := h.svc.Conduct(context.Background(), "l1", dto.ConductLessonRequest{}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.LessonStatusScheduled, h.store.lessons["l1"].Status)
}

func TestLifecycleTransitionMatrix(t *testing.T) {
	cases := []struct {
		from    models.LessonStatus
		to      models.LessonStatus
		allowed bool
	}{
		{models.LessonStatusScheduled, models.LessonStatusConducted, true},
		{models.LessonStatusScheduled, models.LessonStatusCancelled, true},
		{models.LessonStatusScheduled, models.LessonStatusNoShow, true},
		{models.LessonStatusMakeUp, models.LessonStatusConducted, true},
		{models.LessonStatusMakeUp, models.LessonStatusCancelled, true},
		{models.LessonStatusMakeUp, models.LessonStatusNoShow, true},
		{models.LessonStatusConducted, models.LessonStatusCancelled, false},
		{models.LessonStatusConducted, models.LessonStatusNoShow, false},
		{models.LessonStatusCancelled, models.LessonStatusConducted, false},
		{models.LessonStatusNoShow, models.LessonStatusConducted, false},
		{models.LessonStatusCancelled, models.LessonStatusNoShow, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, canTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestLifecycleNoShowOnTerminalLessonFails(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 12:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusCancelled, "2026-09-07")

	_, err := h.svc.NoShow(context.Background(), "l1", Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestLifecycleDeleteRemovesScheduledLesson(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 12:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-14")

	err := h.svc.Delete(context.Background(), "l1", Actor{UserID: "u1"})
	require.NoError(t, err)
	_, remains := h.store.lessons["l1"]
	assert.False(t, remains)
	assert.Equal(t, 1, h.cache.invalidations)
	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, models.AuditActionLessonDelete, h.audit.entries[0].Action)
}

func TestLifecycleDeleteRefusesLessonWithHistory(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-08 09:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusConducted, "2026-09-07")

	err := h.svc.Delete(context.Background(), "l1", Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	_, remains := h.store.lessons["l1"]
	assert.True(t, remains)
}

func TestLifecycleEditLocksAfterConductedDay(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-08 09:00", nil)
	conducted := lessonFixture("l1", models.LessonStatusConducted, "2026-09-07")
	h.store.lessons["l1"] = conducted

	_, err := h.svc.Edit(context.Background(), "l1", dto.EditLessonRequest{StartTime: "09:00"}, Actor{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLessonLocked.Code, appErrors.FromError(err).Code)
	assert.Empty(t, h.audit.entries)
}

func TestLifecycleEditDuringGracePeriodIsAudited(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 14:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusConducted, "2026-09-07")

	notes := "corrected end time"
	resp, err := h.svc.Edit(context.Background(), "l1", dto.EditLessonRequest{EndTime: "12:00", Notes: &notes}, Actor{UserID: "u1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.True(t, resp.Audited)
	assert.Equal(t, "12:00", h.store.lessons["l1"].EndTime)
	require.Len(t, h.audit.entries, 1)
	entry := h.audit.entries[0]
	assert.Equal(t, models.AuditActionLessonGraceEdit, entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u1", *entry.UserID)
	assert.NotEmpty(t, entry.OldValues)
	assert.NotEmpty(t, entry.NewValues)
}

func TestLifecycleEditScheduledLessonIsNotAudited(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-01 09:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	resp, err := h.svc.Edit(context.Background(), "l1", dto.EditLessonRequest{StartTime: "09:00", EndTime: "10:30"}, Actor{})
	require.NoError(t, err)
	assert.False(t, resp.Audited)
	assert.Empty(t, h.audit.entries)
	assert.Equal(t, "09:00", h.store.lessons["l1"].StartTime)
}

// recordingChecker captures every conflict check it receives.
type recordingChecker struct {
	resp *dto.ConflictCheckResponse
	reqs []dto.ConflictCheckRequest
}

func (c *recordingChecker) Check(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	c.reqs = append(c.reqs, req)
	return c.resp, nil
}

func TestLifecycleEditWindowChangeBlockedByConflict(t *testing.T) {
	checker := &recordingChecker{resp: &dto.ConflictCheckResponse{
		Conflicts: []models.LessonConflict{{LessonID: "other", Dimension: models.ConflictDimensionClass}},
	}}
	h := newLifecycleHarness(t, "2026-09-01 09:00", checker)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	_, err := h.svc.Edit(context.Background(), "l1", dto.EditLessonRequest{StartTime: "13:00", EndTime: "14:00"}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "10:00", h.store.lessons["l1"].StartTime)
	require.Len(t, checker.reqs, 1)
	assert.Equal(t, "2026-09-07", checker.reqs[0].ScheduledDate)
	assert.Equal(t, "l1", checker.reqs[0].ExcludeLessonID)
}

func TestLifecycleEditNotesOnlySkipsConflictCheck(t *testing.T) {
	checker := &recordingChecker{resp: &dto.ConflictCheckResponse{
		Conflicts: []models.LessonConflict{{LessonID: "other", Dimension: models.ConflictDimensionClass}},
	}}
	h := newLifecycleHarness(t, "2026-09-01 09:00", checker)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	notes := "bring mock exam sheets"
	resp, err := h.svc.Edit(context.Background(), "l1", dto.EditLessonRequest{Notes: &notes}, Actor{})
	require.NoError(t, err)
	require.NotNil(t, resp.Lesson.Notes)
	assert.Empty(t, checker.reqs)
}

func TestLifecycleCancelWithMakeupCreatesLinkedPair(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 08:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	h.mock.ExpectBegin()
	h.mock.ExpectCommit()

	resp, err := h.svc.Cancel(context.Background(), "l1", dto.CancelLessonRequest{
		Reason: "teacher ill",
		Makeup: &dto.MakeupData{ScheduledDate: "2026-09-09", StartTime: "14:00", EndTime: "15:30"},
	}, Actor{UserID: "u1"})
	require.NoError(t, err)

	source := h.store.lessons["l1"]
	assert.Equal(t, models.LessonStatusCancelled, source.Status)
	require.NotNil(t, source.CancellationReason)
	assert.Equal(t, "teacher ill", *source.CancellationReason)

	require.NotNil(t, resp.Makeup)
	makeup := h.store.lessons[resp.Makeup.ID]
	assert.Equal(t, models.LessonStatusMakeUp, makeup.Status)
	require.NotNil(t, makeup.OriginalLessonID)
	assert.Equal(t, "l1", *makeup.OriginalLessonID)
	require.NotNil(t, makeup.OriginalLessonDate)
	assert.Equal(t, "2026-09-07", makeup.OriginalLessonDate.Format("2006-01-02"))

	require.NotNil(t, source.MakeupLessonID)
	assert.Equal(t, makeup.ID, *source.MakeupLessonID)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestLifecycleCancelWithoutMakeup(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 08:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusMakeUp, "2026-09-07")

	h.mock.ExpectBegin()
	h.mock.ExpectCommit()

	resp, err := h.svc.Cancel(context.Background(), "l1", dto.CancelLessonRequest{Reason: "room flooded"}, Actor{})
	require.NoError(t, err)
	assert.Nil(t, resp.Makeup)
	assert.Equal(t, models.LessonStatusCancelled, h.store.lessons["l1"].Status)
}

func TestLifecycleCancelWithConflictingMakeupIsRefused(t *testing.T) {
	checker := &recordingChecker{resp: &dto.ConflictCheckResponse{
		Conflicts: []models.LessonConflict{{LessonID: "other", Dimension: models.ConflictDimensionClass}},
	}}
	h := newLifecycleHarness(t, "2026-09-07 08:00", checker)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	_, err := h.svc.Cancel(context.Background(), "l1", dto.CancelLessonRequest{
		Reason: "teacher ill",
		Makeup: &dto.MakeupData{ScheduledDate: "2026-09-09", StartTime: "14:00", EndTime: "15:30"},
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.LessonStatusScheduled, h.store.lessons["l1"].Status)
	assert.Len(t, h.store.lessons, 1)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestLifecycleStandaloneMakeupWindowIsConflictChecked(t *testing.T) {
	checker := &recordingChecker{resp: &dto.ConflictCheckResponse{
		Conflicts: []models.LessonConflict{{LessonID: "other", Dimension: models.ConflictDimensionTeacher}},
	}}
	h := newLifecycleHarness(t, "2026-09-08 08:00", checker)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusCancelled, "2026-09-07")

	_, err := h.svc.CreateMakeup(context.Background(), "l1", dto.MakeupData{
		ScheduledDate: "2026-09-10", StartTime: "14:00", EndTime: "15:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, h.store.lessons, 1)
	require.Len(t, checker.reqs, 1)
	assert.Equal(t, "2026-09-10", checker.reqs[0].ScheduledDate)
	assert.Equal(t, "14:00", checker.reqs[0].StartTime)
	assert.Equal(t, "l1", checker.reqs[0].ExcludeLessonID)
}

func TestLifecycleStandaloneMakeupRejectsLinkedSource(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-08 08:00", nil)
	linked := "l2"
	source := lessonFixture("l1", models.LessonStatusCancelled, "2026-09-07")
	source.MakeupLessonID = &linked
	h.store.lessons["l1"] = source

	_, err := h.svc.CreateMakeup(context.Background(), "l1", dto.MakeupData{ScheduledDate: "2026-09-10", StartTime: "14:00", EndTime: "15:00"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLifecycleStandaloneMakeupRequiresCancelledSource(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-08 08:00", nil)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	_, err := h.svc.CreateMakeup(context.Background(), "l1", dto.MakeupData{ScheduledDate: "2026-09-10", StartTime: "14:00", EndTime: "15:00"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestLifecycleRescheduleBlocksHardConflict(t *testing.T) {
	checker := &flakyChecker{resp: &dto.ConflictCheckResponse{
		Conflicts: []models.LessonConflict{{LessonID: "other", Dimension: models.ConflictDimensionClass}},
	}}
	h := newLifecycleHarness(t, "2026-09-01 08:00", checker)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	_, err := h.svc.Reschedule(context.Background(), "l1", dto.RescheduleLessonRequest{
		ScheduledDate: "2026-09-08", StartTime: "10:00", EndTime: "11:30", Force: true,
	}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "2026-09-07", h.store.lessons["l1"].ScheduledDate.Format("2006-01-02"))
}

func TestLifecycleRescheduleForceOverridesSoftConflict(t *testing.T) {
	checker := &flakyChecker{resp: &dto.ConflictCheckResponse{
		Conflicts: []models.LessonConflict{{LessonID: "other", Dimension: models.ConflictDimensionRoom}},
	}}
	h := newLifecycleHarness(t, "2026-09-01 08:00", checker)
	h.store.lessons["l1"] = lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")

	req := dto.RescheduleLessonRequest{ScheduledDate: "2026-09-08", StartTime: "13:00", EndTime: "14:30"}

	_, err := h.svc.Reschedule(context.Background(), "l1", req, Actor{})
	require.Error(t, err)

	req.Force = true
	resp, err := h.svc.Reschedule(context.Background(), "l1", req, Actor{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-08", resp.Lesson.ScheduledDate.Format("2006-01-02"))
	assert.Equal(t, "13:00", resp.Lesson.StartTime)
	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, models.AuditActionLessonReschedule, h.audit.entries[0].Action)
}

func TestLifecycleListDerivesIndicators(t *testing.T) {
	h := newLifecycleHarness(t, "2026-09-07 13:00", nil)
	past := lessonFixture("l1", models.LessonStatusScheduled, "2026-09-07")
	upcoming := lessonFixture("l2", models.LessonStatusScheduled, "2026-09-14")
	h.store.listed = []models.Lesson{past, upcoming}

	views, pagination, err := h.svc.List(context.Background(), models.LessonFilter{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].NeedsDocumentation)
	assert.False(t, views[1].NeedsDocumentation)
	assert.Equal(t, 2, pagination.TotalCount)
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

func newLessonMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func lessonRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "class_id", "teacher_id", "room", "scheduled_date", "start_time", "end_time", "status", "conducted_at", "cancellation_reason", "makeup_lesson_id", "original_lesson_id", "original_lesson_date", "notes", "created_at", "updated_at"}).
		AddRow("l1", "class-1", "teacher-1", "R1", now, "10:00", "11:30", "SCHEDULED", nil, nil, nil, nil, nil, nil, now, now)
}

func TestLessonRepositoryListFiltersByClassAndStatus(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+lessonColumns+" FROM lessons WHERE 1=1 AND class_id = $1 AND status = $2 ORDER BY scheduled_date ASC, start_time ASC LIMIT 20 OFFSET 0")).
		WithArgs("class-1", "SCHEDULED").
		WillReturnRows(lessonRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lessons WHERE 1=1 AND class_id = $1 AND status = $2")).
		WithArgs("class-1", "SCHEDULED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	lessons, total, err := repo.List(context.Background(), models.LessonFilter{ClassID: "class-1", Status: "SCHEDULED"})
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryFindOverlappingExcludesCancelled(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM lessons\\s+WHERE scheduled_date = \\$1\\s+AND status <> \\$2\\s+AND start_time < \\$3 AND end_time > \\$4").
		WithArgs(date, models.LessonStatusCancelled, "11:00", "10:00", "class-1", "teacher-1", "R1", "").
		WillReturnRows(lessonRows())

	lessons, err := repo.FindOverlapping(context.Background(), date, "10:00", "11:00", "class-1", "teacher-1", "R1", "")
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryFindOverlappingSkipsExcludedLesson(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM lessons\\s+WHERE scheduled_date = \\$1\\s+AND status <> \\$2\\s+AND start_time < \\$3 AND end_time > \\$4\\s+AND \\(class_id = \\$5 OR teacher_id = \\$6 OR room = \\$7\\)\\s+AND \\(\\$8 = '' OR id <> \\$8\\)").
		WithArgs(date, models.LessonStatusCancelled, "11:00", "10:00", "class-1", "teacher-1", "R1", "l1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	lessons, err := repo.FindOverlapping(context.Background(), date, "10:00", "11:00", "class-1", "teacher-1", "R1", "l1")
	require.NoError(t, err)
	assert.Empty(t, lessons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lesson := &models.Lesson{ClassID: "class-1", TeacherID: "teacher-1", Room: "R1", ScheduledDate: time.Now(), StartTime: "10:00", EndTime: "11:30", Status: models.LessonStatusScheduled}
	err := repo.Create(context.Background(), lesson)
	require.NoError(t, err)
	assert.NotEmpty(t, lesson.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositorySetMakeupLinkRefusesSecondLink(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons SET makeup_lesson_id = $1, updated_at = $2 WHERE id = $3 AND makeup_lesson_id IS NULL")).
		WithArgs("l2", sqlmock.AnyArg(), "l1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.SetMakeupLink(context.Background(), tx, "l1", "l2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryBulkCreateStopsOnFirstFailure(t *testing.T) {
	db, mock, cleanup := newLessonMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO lessons").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO lessons").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	lessons := []models.Lesson{
		{ClassID: "class-1", ScheduledDate: time.Now(), StartTime: "10:00", EndTime: "11:00", Status: models.LessonStatusScheduled},
		{ClassID: "class-1", ScheduledDate: time.Now(), StartTime: "10:00", EndTime: "11:00", Status: models.LessonStatusScheduled},
	}
	err = repo.BulkCreateWithTx(context.Background(), tx, lessons)
	require.Error(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

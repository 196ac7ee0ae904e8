package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

const lessonColumns = "id, class_id, teacher_id, room, scheduled_date, start_time, end_time, status, conducted_at, cancellation_reason, makeup_lesson_id, original_lesson_id, original_lesson_date, notes, created_at, updated_at"

// LessonRepository provides persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// BeginTxx starts a transaction for multi-row operations.
func (r *LessonRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

// List returns lessons with optional filtering and pagination.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	base := "FROM lessons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id IN (SELECT class_id FROM schedule_slots WHERE semester_id = $%d)", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"scheduled_date": true,
		"start_time":     true,
		"status":         true,
		"created_at":     true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "scheduled_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", lessonColumns, base, sortBy, order, size, offset)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	return lessons, total, nil
}

// FindByID loads a lesson by id.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE id = $1", lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// FindOverlapping returns non-cancelled lessons on the date whose window
// intersects [startTime, endTime) and which share the class, teacher or
// room. excludeID lets a reschedule check skip the lesson being moved.
// Fixed-width HH:mm text compares correctly in SQL.
func (r *LessonRepository) FindOverlapping(ctx context.Context, date time.Time, startTime, endTime, classID, teacherID, room, excludeID string) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons
		WHERE scheduled_date = $1
		  AND status <> $2
		  AND start_time < $3 AND end_time > $4
		  AND (class_id = $5 OR teacher_id = $6 OR room = $7)
		  AND ($8 = '' OR id <> $8)
		ORDER BY start_time ASC`, lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, date, models.LessonStatusCancelled, endTime, startTime, classID, teacherID, room, excludeID); err != nil {
		return nil, fmt.Errorf("find overlapping lessons: %w", err)
	}
	return lessons, nil
}

// CountOverlappingForClass reports how many non-cancelled lessons already
// occupy the class/date/window, used by generation conflict skipping.
func (r *LessonRepository) CountOverlappingForClass(ctx context.Context, classID string, date time.Time, startTime, endTime string) (int, error) {
	const query = `SELECT COUNT(*) FROM lessons
		WHERE class_id = $1 AND scheduled_date = $2 AND status <> $3
		  AND start_time < $4 AND end_time > $5`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, date, models.LessonStatusCancelled, endTime, startTime); err != nil {
		return 0, fmt.Errorf("count overlapping lessons: %w", err)
	}
	return count, nil
}

const insertLessonQuery = `INSERT INTO lessons (id, class_id, teacher_id, room, scheduled_date, start_time, end_time, status, conducted_at, cancellation_reason, makeup_lesson_id, original_lesson_id, original_lesson_date, notes, created_at, updated_at) VALUES (:id, :class_id, :teacher_id, :room, :scheduled_date, :start_time, :end_time, :status, :conducted_at, :cancellation_reason, :makeup_lesson_id, :original_lesson_id, :original_lesson_date, :notes, :created_at, :updated_at)`

// Create stores a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.insertLesson(ctx, r.db, lesson)
}

// CreateTx stores a new lesson using an existing transaction.
func (r *LessonRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.insertLesson(ctx, tx, lesson)
}

// BulkCreateWithTx inserts many lessons using an existing transaction.
func (r *LessonRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, lessons []models.Lesson) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	for i := range lessons {
		if err := r.insertLesson(ctx, tx, &lessons[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *LessonRepository) insertLesson(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	now := time.Now().UTC()
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	if _, err := sqlx.NamedExecContext(ctx, exec, insertLessonQuery, lesson); err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

const updateLessonQuery = `UPDATE lessons SET scheduled_date = :scheduled_date, start_time = :start_time, end_time = :end_time, status = :status, conducted_at = :conducted_at, cancellation_reason = :cancellation_reason, makeup_lesson_id = :makeup_lesson_id, original_lesson_id = :original_lesson_id, original_lesson_date = :original_lesson_date, notes = :notes, updated_at = :updated_at WHERE id = :id`

// Update modifies a lesson record.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, updateLessonQuery, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// UpdateTx modifies a lesson within an existing transaction.
func (r *LessonRepository) UpdateTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	lesson.UpdatedAt = time.Now().UTC()
	if _, err := sqlx.NamedExecContext(ctx, tx, updateLessonQuery, lesson); err != nil {
		return fmt.Errorf("update lesson in tx: %w", err)
	}
	return nil
}

// SetMakeupLink points a cancelled lesson at its replacement. Runs inside
// the caller's transaction so the link pair commits atomically with the
// replacement insert.
func (r *LessonRepository) SetMakeupLink(ctx context.Context, tx *sqlx.Tx, sourceID, makeupID string) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	res, err := tx.ExecContext(ctx, `UPDATE lessons SET makeup_lesson_id = $1, updated_at = $2 WHERE id = $3 AND makeup_lesson_id IS NULL`, makeupID, time.Now().UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("set makeup link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set makeup link rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a lesson by id.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

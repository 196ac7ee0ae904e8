package models

import (
	"time"

	"github.com/sapta-dev/bimbel-admin-api/internal/timeutil"
)

// LessonStatus is the closed set of lifecycle states for a lesson.
type LessonStatus string

const (
	LessonStatusScheduled LessonStatus = "SCHEDULED"
	LessonStatusConducted LessonStatus = "CONDUCTED"
	LessonStatusCancelled LessonStatus = "CANCELLED"
	LessonStatusMakeUp    LessonStatus = "MAKE_UP"
	LessonStatusNoShow    LessonStatus = "NO_SHOW"
)

// Valid reports whether the value is one of the known statuses.
func (s LessonStatus) Valid() bool {
	switch s {
	case LessonStatusScheduled, LessonStatusConducted, LessonStatusCancelled,
		LessonStatusMakeUp, LessonStatusNoShow:
		return true
	}
	return false
}

// Actionable reports whether quick actions (conduct/cancel/no-show/
// reschedule) may target this status. MAKE_UP behaves exactly like
// SCHEDULED.
func (s LessonStatus) Actionable() bool {
	return s == LessonStatusScheduled || s == LessonStatusMakeUp
}

// Lesson is one concrete dated occurrence of a class meeting. Teacher and
// room are denormalized from the class at creation time so conflict queries
// stay single-table.
type Lesson struct {
	ID                 string       `db:"id" json:"id"`
	ClassID            string       `db:"class_id" json:"class_id"`
	TeacherID          string       `db:"teacher_id" json:"teacher_id"`
	Room               string       `db:"room" json:"room"`
	ScheduledDate      time.Time    `db:"scheduled_date" json:"scheduled_date"`
	StartTime          string       `db:"start_time" json:"start_time"`
	EndTime            string       `db:"end_time" json:"end_time"`
	Status             LessonStatus `db:"status" json:"status"`
	ConductedAt        *time.Time   `db:"conducted_at" json:"conducted_at,omitempty"`
	CancellationReason *string      `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	MakeupLessonID     *string      `db:"makeup_lesson_id" json:"makeup_lesson_id,omitempty"`
	OriginalLessonID   *string      `db:"original_lesson_id" json:"original_lesson_id,omitempty"`
	OriginalLessonDate *time.Time   `db:"original_lesson_date" json:"original_lesson_date,omitempty"`
	Notes              *string      `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}

// Window returns the lesson's [start, end) time range.
func (l *Lesson) Window() (timeutil.TimeRange, error) {
	return timeutil.NewTimeRange(l.StartTime, l.EndTime)
}

// StartsAt combines the scheduled date with the start time.
func (l *Lesson) StartsAt() time.Time {
	start, err := timeutil.ParseClock(l.StartTime)
	if err != nil {
		return timeutil.DateOnly(l.ScheduledDate)
	}
	return timeutil.DateOnly(l.ScheduledDate).Add(time.Duration(start) * time.Minute)
}

// EndsAt combines the scheduled date with the end time.
func (l *Lesson) EndsAt() time.Time {
	end, err := timeutil.ParseClock(l.EndTime)
	if err != nil {
		return timeutil.DateOnly(l.ScheduledDate)
	}
	return timeutil.DateOnly(l.ScheduledDate).Add(time.Duration(end) * time.Minute)
}

// LockedAt reports whether the lesson refuses edits at the given instant:
// conducted lessons become immutable once their date is strictly in the past.
func (l *Lesson) LockedAt(now time.Time) bool {
	if l.Status != LessonStatusConducted {
		return false
	}
	return timeutil.DateOnly(l.ScheduledDate).Before(timeutil.DateOnly(now))
}

// InGracePeriodAt reports whether the lesson is a conducted lesson still on
// its own calendar day, where edits are allowed but audited.
func (l *Lesson) InGracePeriodAt(now time.Time) bool {
	if l.Status != LessonStatusConducted {
		return false
	}
	return timeutil.SameDate(l.ScheduledDate, now)
}

// NeedsDocumentationAt flags a still-actionable lesson whose end time has
// already passed. Derived indicator, never persisted.
func (l *Lesson) NeedsDocumentationAt(now time.Time) bool {
	if !l.Status.Actionable() {
		return false
	}
	return l.EndsAt().Before(now)
}

// LessonFilter describes query parameters for listing lessons.
type LessonFilter struct {
	ClassID    string
	TeacherID  string
	SemesterID string
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ConflictDimension identifies which shared resource collides.
type ConflictDimension string

const (
	ConflictDimensionClass   ConflictDimension = "CLASS"
	ConflictDimensionTeacher ConflictDimension = "TEACHER"
	ConflictDimensionRoom    ConflictDimension = "ROOM"
)

// LessonConflict describes an existing lesson colliding with a candidate
// window. Computed, never persisted.
type LessonConflict struct {
	LessonID      string            `json:"lesson_id"`
	ClassID       string            `json:"class_id"`
	TeacherID     string            `json:"teacher_id"`
	Room          string            `json:"room"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	StartTime     string            `json:"start_time"`
	EndTime       string            `json:"end_time"`
	Dimension     ConflictDimension `json:"dimension"`
}

// LessonConflictError is returned when a candidate window collides with
// existing lessons.
type LessonConflictError struct {
	Message   string           `json:"message"`
	Conflicts []LessonConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *LessonConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

package dto

import (
	"time"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

// ConflictCheckRequest asks whether a candidate lesson window collides with
// existing lessons. Times accept optional seconds and are normalized by
// truncation before use.
type ConflictCheckRequest struct {
	ClassID         string `json:"classId" validate:"required"`
	ScheduledDate   string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"startTime" validate:"required"`
	EndTime         string `json:"endTime" validate:"required"`
	ExcludeLessonID string `json:"excludeLessonId"`
}

// DateSuggestion proposes an alternative date keeping the original window.
type DateSuggestion struct {
	Label         string `json:"label"`
	ScheduledDate string `json:"scheduledDate"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

// ConflictCheckResponse returns detected conflicts plus date suggestions.
// An empty Conflicts slice means the window is free.
type ConflictCheckResponse struct {
	Conflicts   []models.LessonConflict `json:"conflicts"`
	Suggestions []DateSuggestion        `json:"suggestions,omitempty"`
}

// GenerationOptions tunes bulk lesson generation from a slot.
type GenerationOptions struct {
	RangeType     string `json:"rangeType" validate:"required,oneof=SEMESTER_END ACADEMIC_YEAR_END CUSTOM"`
	CustomStart   string `json:"customStart" validate:"omitempty,datetime=2006-01-02"`
	CustomEnd     string `json:"customEnd" validate:"omitempty,datetime=2006-01-02"`
	SkipConflicts bool   `json:"skipConflicts"`
	SkipHolidays  bool   `json:"skipHolidays"`
}

// GenerationSummary reports a bulk generation outcome.
type GenerationSummary struct {
	TotalGenerated   int             `json:"totalGenerated"`
	SkippedConflicts int             `json:"skippedConflicts"`
	SkippedHolidays  int             `json:"skippedHolidays"`
	Created          []models.Lesson `json:"created,omitempty"`
}

// CreateScheduleSlotRequest authors a recurring weekly slot, optionally
// expanding it into lessons in the same call.
type CreateScheduleSlotRequest struct {
	ClassID         string             `json:"classId" validate:"required"`
	DayOfWeek       string             `json:"dayOfWeek" validate:"required"`
	StartTime       string             `json:"startTime" validate:"required"`
	EndTime         string             `json:"endTime" validate:"required"`
	SemesterID      string             `json:"semesterId"`
	EffectiveFrom   string             `json:"effectiveFrom" validate:"omitempty,datetime=2006-01-02"`
	EffectiveUntil  string             `json:"effectiveUntil" validate:"omitempty,datetime=2006-01-02"`
	Force           bool               `json:"force"`
	GenerateLessons bool               `json:"generateLessons"`
	Generation      *GenerationOptions `json:"generationOptions" validate:"omitempty"`
}

// CreateScheduleSlotResponse couples the stored slot with an optional
// generation summary and any non-blocking warnings.
type CreateScheduleSlotResponse struct {
	Slot       models.ScheduleSlot  `json:"slot"`
	Warnings   []models.SlotWarning `json:"warnings,omitempty"`
	Generation *GenerationSummary   `json:"generation,omitempty"`
}

// UpdateScheduleSlotRequest edits a recurring slot.
type UpdateScheduleSlotRequest struct {
	DayOfWeek      string `json:"dayOfWeek" validate:"required"`
	StartTime      string `json:"startTime" validate:"required"`
	EndTime        string `json:"endTime" validate:"required"`
	SemesterID     string `json:"semesterId"`
	EffectiveFrom  string `json:"effectiveFrom" validate:"omitempty,datetime=2006-01-02"`
	EffectiveUntil string `json:"effectiveUntil" validate:"omitempty,datetime=2006-01-02"`
	Force          bool   `json:"force"`
}

// SlotSuggestionRequest asks for alternative weekly slots for a candidate.
type SlotSuggestionRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=10"`
}

// CreateLessonRequest creates a single ad-hoc lesson.
type CreateLessonRequest struct {
	ClassID       string `json:"classId" validate:"required"`
	ScheduledDate string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"startTime" validate:"required"`
	EndTime       string `json:"endTime" validate:"required"`
	Notes         string `json:"notes"`
	Force         bool   `json:"force"`
}

// ConductLessonRequest marks an actionable lesson conducted.
type ConductLessonRequest struct {
	Notes string `json:"notes"`
}

// MakeupData describes the replacement lesson created on cancellation.
type MakeupData struct {
	ScheduledDate string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"startTime" validate:"required"`
	EndTime       string `json:"endTime" validate:"required"`
}

// CancelLessonRequest cancels an actionable lesson, optionally spawning the
// linked make-up lesson atomically.
type CancelLessonRequest struct {
	Reason string      `json:"reason" validate:"required"`
	Makeup *MakeupData `json:"makeupData" validate:"omitempty"`
}

// RescheduleLessonRequest moves a lesson to a new window. Force overrides
// only soft (other-class) conflicts.
type RescheduleLessonRequest struct {
	ScheduledDate string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"startTime" validate:"required"`
	EndTime       string `json:"endTime" validate:"required"`
	Force         bool   `json:"force"`
}

// EditLessonRequest edits a conducted lesson (notes and window), subject to
// the locking rule.
type EditLessonRequest struct {
	StartTime string  `json:"startTime" validate:"omitempty"`
	EndTime   string  `json:"endTime" validate:"omitempty"`
	Notes     *string `json:"notes"`
}

// QuickActionRequest is the single payload behind the lesson list's quick
// action menu. Only the fields the chosen action needs are consulted.
type QuickActionRequest struct {
	Action        string      `json:"action" validate:"required,oneof=CONDUCT CANCEL NO_SHOW RESCHEDULE"`
	Notes         string      `json:"notes"`
	Reason        string      `json:"reason"`
	Makeup        *MakeupData `json:"makeupData" validate:"omitempty"`
	ScheduledDate string      `json:"scheduledDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime     string      `json:"startTime"`
	EndTime       string      `json:"endTime"`
	Force         bool        `json:"force"`
}

// LessonView decorates a lesson with derived read-only indicators.
type LessonView struct {
	models.Lesson
	NeedsDocumentation bool `json:"needs_documentation"`
	Locked             bool `json:"locked"`
}

// LessonMutationResponse is returned from lifecycle-changing endpoints.
type LessonMutationResponse struct {
	Lesson  LessonView     `json:"lesson"`
	Makeup  *models.Lesson `json:"makeup,omitempty"`
	Audited bool           `json:"audited,omitempty"`
}

// NewLessonView derives read-only indicators at the given instant.
func NewLessonView(lesson models.Lesson, now time.Time) LessonView {
	return LessonView{
		Lesson:             lesson,
		NeedsDocumentation: lesson.NeedsDocumentationAt(now),
		Locked:             lesson.LockedAt(now),
	}
}

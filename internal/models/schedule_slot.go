package models

import "time"

// ScheduleSlot is a recurring weekly time commitment for a class.
type ScheduleSlot struct {
	ID             string     `db:"id" json:"id"`
	ClassID        string     `db:"class_id" json:"class_id"`
	DayOfWeek      string     `db:"day_of_week" json:"day_of_week"`
	StartTime      string     `db:"start_time" json:"start_time"`
	EndTime        string     `db:"end_time" json:"end_time"`
	SemesterID     *string    `db:"semester_id" json:"semester_id,omitempty"`
	EffectiveFrom  time.Time  `db:"effective_from" json:"effective_from"`
	EffectiveUntil *time.Time `db:"effective_until" json:"effective_until,omitempty"`
	Archived       bool       `db:"archived" json:"archived"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// SlotWarning reports a non-blocking overlap with another class sharing the
// same teacher or room.
type SlotWarning struct {
	Slot      ScheduleSlot      `json:"slot"`
	Dimension ConflictDimension `json:"dimension"`
}

// SlotValidation is the result of validating a candidate slot. A hard
// same-class overlap clears OK; cross-resource overlaps only populate
// Warnings and leave the decision to the caller.
type SlotValidation struct {
	OK          bool          `json:"ok"`
	Reason      string        `json:"reason,omitempty"`
	Overlapping *ScheduleSlot `json:"overlapping,omitempty"`
	Warnings    []SlotWarning `json:"warnings,omitempty"`
}

// SlotSuggestion is an alternative weekly slot with the candidate's
// duration preserved.
type SlotSuggestion struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

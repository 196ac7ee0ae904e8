package models

import "time"

// Semester bounds a teaching period. AcademicYearEnd is the last day of the
// school year the semester belongs to, used by year-long generation ranges.
type Semester struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
	AcademicYearEnd time.Time `db:"academic_year_end" json:"academic_year_end"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Holiday marks a date on which no lessons are generated.
type Holiday struct {
	ID        string    `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

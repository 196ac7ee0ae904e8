package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

// CalendarRepository provides persistence for semesters and holidays.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// FindSemesterByID loads a semester by id.
func (r *CalendarRepository) FindSemesterByID(ctx context.Context, id string) (*models.Semester, error) {
	const query = `SELECT id, name, start_date, end_date, academic_year_end, active, created_at FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindActiveSemester returns the currently active semester.
func (r *CalendarRepository) FindActiveSemester(ctx context.Context) (*models.Semester, error) {
	const query = `SELECT id, name, start_date, end_date, academic_year_end, active, created_at FROM semesters WHERE active = TRUE ORDER BY start_date DESC LIMIT 1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query); err != nil {
		return nil, err
	}
	return &semester, nil
}

// ListHolidaysBetween returns holidays inside [from, until] inclusive.
func (r *CalendarRepository) ListHolidaysBetween(ctx context.Context, from, until time.Time) ([]models.Holiday, error) {
	const query = `SELECT id, date, name, created_at FROM holidays WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from, until); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// CreateHoliday stores a holiday entry.
func (r *CalendarRepository) CreateHoliday(ctx context.Context, holiday *models.Holiday) error {
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}
	if holiday.CreatedAt.IsZero() {
		holiday.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO holidays (id, date, name, created_at) VALUES (:id, :date, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, holiday); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}

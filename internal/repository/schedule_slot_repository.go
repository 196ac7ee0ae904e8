package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

const slotColumns = "id, class_id, day_of_week, start_time, end_time, semester_id, effective_from, effective_until, archived, created_at, updated_at"

// ScheduleSlotRepository provides persistence for recurring schedule slots.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository creates a new schedule slot repository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

// ListByClass returns non-archived slots for a class ordered by day/time.
func (r *ScheduleSlotRepository) ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_slots WHERE class_id = $1 AND archived = FALSE ORDER BY day_of_week ASC, start_time ASC`, slotColumns)
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list slots by class: %w", err)
	}
	return slots, nil
}

// ListSharingResources returns non-archived slots of OTHER classes that use
// the given teacher or room, for the informational overlap warnings.
func (r *ScheduleSlotRepository) ListSharingResources(ctx context.Context, classID, teacherID, room string) ([]models.ScheduleSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_slots s
		WHERE s.archived = FALSE AND s.class_id <> $1
		  AND s.class_id IN (SELECT id FROM classes WHERE teacher_id = $2 OR room = $3)
		ORDER BY s.day_of_week ASC, s.start_time ASC`, slotColumns)
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID, teacherID, room); err != nil {
		return nil, fmt.Errorf("list slots sharing resources: %w", err)
	}
	return slots, nil
}

// FindByID loads a slot by id.
func (r *ScheduleSlotRepository) FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_slots WHERE id = $1", slotColumns)
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create stores a new slot record.
func (r *ScheduleSlotRepository) Create(ctx context.Context, slot *models.ScheduleSlot) error {
	now := time.Now().UTC()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO schedule_slots (id, class_id, day_of_week, start_time, end_time, semester_id, effective_from, effective_until, archived, created_at, updated_at) VALUES (:id, :class_id, :day_of_week, :start_time, :end_time, :semester_id, :effective_from, :effective_until, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create schedule slot: %w", err)
	}
	return nil
}

// Update modifies a slot record.
func (r *ScheduleSlotRepository) Update(ctx context.Context, slot *models.ScheduleSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_slots SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, semester_id = :semester_id, effective_from = :effective_from, effective_until = :effective_until, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update schedule slot: %w", err)
	}
	return nil
}

// Archive retires a slot without touching lessons already generated from it.
func (r *ScheduleSlotRepository) Archive(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE schedule_slots SET archived = TRUE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("archive schedule slot: %w", err)
	}
	return nil
}

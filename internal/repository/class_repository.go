package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

// ClassRepository reads class rows; class CRUD itself lives outside the
// scheduling core.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, subject_id, teacher_id, room, created_at, updated_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/brikomag/pricewatch/internal/models"
)

// ScheduleRepository handles data access for report schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a new schedule for a tag. New schedules start active.
func (r *ScheduleRepository) Create(tagID int, cron string) (*models.Schedule, error) {
	const q = `INSERT INTO schedules (tag_id, cron, active) VALUES ($1, $2, TRUE) RETURNING *`

	var s models.Schedule
	if err := r.db.Get(&s, q, tagID, cron); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAll returns all schedules, oldest first.
func (r *ScheduleRepository) GetAll() ([]models.Schedule, error) {
	const q = `SELECT * FROM schedules ORDER BY id ASC`

	var schedules []models.Schedule
	if err := r.db.Select(&schedules, q); err != nil {
		return nil, err
	}
	return schedules, nil
}

// SetActive toggles a schedule. Returns sql.ErrNoRows when the schedule
// does not exist.
func (r *ScheduleRepository) SetActive(id int, active bool) error {
	const q = `UPDATE schedules SET active = $2 WHERE id = $1`

	res, err := r.db.Exec(q, id, active)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetActiveWithTags returns every active schedule joined to its tag. The
// dispatcher reads this wholesale on each refresh.
func (r *ScheduleRepository) GetActiveWithTags() ([]models.ScheduleWithTag, error) {
	const q = `
        SELECT s.id, s.tag_id, s.cron, s.active, s.created_at,
               t.name AS tag_name,
               t.email AS tag_email
        FROM schedules s
        JOIN tags t ON t.id = s.tag_id
        WHERE s.active = TRUE
        ORDER BY s.id ASC`

	var rows []models.ScheduleWithTag
	if err := r.db.Select(&rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

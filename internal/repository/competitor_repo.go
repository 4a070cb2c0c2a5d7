package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/brikomag/pricewatch/internal/models"
)

// CompetitorRepository handles data access for competitors.
type CompetitorRepository struct {
	db *sqlx.DB
}

// NewCompetitorRepository creates a new CompetitorRepository.
func NewCompetitorRepository(db *sqlx.DB) *CompetitorRepository {
	return &CompetitorRepository{db: db}
}

// Upsert creates the competitor if absent, otherwise refreshes its display
// fields. Used for the idempotent seed at process start.
func (r *CompetitorRepository) Upsert(code, name, baseURL string) (*models.Competitor, error) {
	const q = `
        INSERT INTO competitors (code, name, base_url)
        VALUES ($1, $2, $3)
        ON CONFLICT (code) DO UPDATE SET
            name = EXCLUDED.name,
            base_url = EXCLUDED.base_url
        RETURNING *`

	var c models.Competitor
	if err := r.db.Get(&c, q, code, name, baseURL); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode returns a competitor by its unique code.
func (r *CompetitorRepository) GetByCode(code string) (*models.Competitor, error) {
	const q = `SELECT * FROM competitors WHERE code = $1 LIMIT 1`

	var c models.Competitor
	if err := r.db.Get(&c, q, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}

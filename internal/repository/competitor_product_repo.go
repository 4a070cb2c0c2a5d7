package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/brikomag/pricewatch/internal/models"
)

// CompetitorProductRepository handles data access for competitor products.
type CompetitorProductRepository struct {
	db *sqlx.DB
}

// NewCompetitorProductRepository creates a new CompetitorProductRepository.
func NewCompetitorProductRepository(db *sqlx.DB) *CompetitorProductRepository {
	return &CompetitorProductRepository{db: db}
}

// Upsert inserts or updates a competitor product keyed by
// (competitor_id, sku) and fills in the row id. Concurrent upserts of the
// same key resolve to a single row; ON CONFLICT is the arbiter.
func (r *CompetitorProductRepository) Upsert(cp *models.CompetitorProduct) error {
	const q = `
        INSERT INTO competitor_products (competitor_id, sku, name, url, barcode)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (competitor_id, sku) DO UPDATE SET
            name = EXCLUDED.name,
            url = EXCLUDED.url,
            barcode = COALESCE(EXCLUDED.barcode, competitor_products.barcode)
        RETURNING id, created_at`

	return r.db.QueryRowx(q, cp.CompetitorID, cp.SKU, cp.Name, cp.URL, cp.Barcode).
		Scan(&cp.ID, &cp.CreatedAt)
}

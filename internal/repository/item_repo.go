package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/brikomag/pricewatch/internal/models"
)

// ItemRepository handles data access for catalog items.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Upsert inserts or updates an item by sku and fills in the row id.
func (r *ItemRepository) Upsert(item *models.Item) error {
	const q = `
        INSERT INTO items (sku, name, barcode, price)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (sku) DO UPDATE SET
            name = EXCLUDED.name,
            barcode = EXCLUDED.barcode,
            price = EXCLUDED.price
        RETURNING id, created_at`

	return r.db.QueryRowx(q, item.SKU, item.Name, item.Barcode, item.Price).
		Scan(&item.ID, &item.CreatedAt)
}

// GetAll returns every item ordered by id ascending.
func (r *ItemRepository) GetAll() ([]models.Item, error) {
	const q = `SELECT * FROM items ORDER BY id ASC`

	var items []models.Item
	if err := r.db.Select(&items, q); err != nil {
		return nil, err
	}
	return items, nil
}

// GetRecent returns the most recently created items, newest first.
func (r *ItemRepository) GetRecent(limit int) ([]models.Item, error) {
	if limit <= 0 {
		limit = 1000
	}
	const q = `SELECT * FROM items ORDER BY id DESC LIMIT $1`

	var items []models.Item
	if err := r.db.Select(&items, q, limit); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns a single item by id.
func (r *ItemRepository) GetByID(id int) (*models.Item, error) {
	const q = `SELECT * FROM items WHERE id = $1 LIMIT 1`

	var it models.Item
	if err := r.db.Get(&it, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &it, nil
}

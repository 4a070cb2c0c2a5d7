package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/brikomag/pricewatch/internal/models"
)

// TagRepository handles data access for tags and tag memberships.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a new tag. The unique constraint on name surfaces as a
// pq error to the caller.
func (r *TagRepository) Create(name string, email *string) (*models.Tag, error) {
	const q = `INSERT INTO tags (name, email) VALUES ($1, $2) RETURNING *`

	var t models.Tag
	if err := r.db.Get(&t, q, name, email); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetAll returns all tags, newest first.
func (r *TagRepository) GetAll() ([]models.Tag, error) {
	const q = `SELECT * FROM tags ORDER BY id DESC`

	var tags []models.Tag
	if err := r.db.Select(&tags, q); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetByID returns a single tag by id.
func (r *TagRepository) GetByID(id int) (*models.Tag, error) {
	const q = `SELECT * FROM tags WHERE id = $1 LIMIT 1`

	var t models.Tag
	if err := r.db.Get(&t, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &t, nil
}

// AddItem links an item to a tag. Linking the same pair twice is a no-op;
// the bool reports whether a new link was created.
func (r *TagRepository) AddItem(tagID, itemID int) (bool, error) {
	const q = `
        INSERT INTO item_tags (item_id, tag_id)
        VALUES ($1, $2)
        ON CONFLICT (item_id, tag_id) DO NOTHING`

	res, err := r.db.Exec(q, itemID, tagID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

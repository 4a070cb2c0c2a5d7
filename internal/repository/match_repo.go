package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/brikomag/pricewatch/internal/models"
)

// MatchRepository handles data access for item↔competitor-product matches
// and the read projections built on top of them.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// InsertAuto records an automatic (unapproved) match. A second insert for
// the same (item, product) pair is a no-op; the bool reports whether a new
// row was created.
func (r *MatchRepository) InsertAuto(itemID, competitorProductID int) (bool, error) {
	const q = `
        INSERT INTO matches (item_id, competitor_product_id, approved, auto_by_barcode)
        VALUES ($1, $2, FALSE, TRUE)
        ON CONFLICT (item_id, competitor_product_id) DO NOTHING`

	res, err := r.db.Exec(q, itemID, competitorProductID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertApproved records a manual match. When a row already exists for the
// pair (typically an earlier automatic match) it is upgraded in place to
// approved instead of tripping the uniqueness constraint.
func (r *MatchRepository) UpsertApproved(itemID, competitorProductID int) error {
	const q = `
        INSERT INTO matches (item_id, competitor_product_id, approved, auto_by_barcode)
        VALUES ($1, $2, TRUE, FALSE)
        ON CONFLICT (item_id, competitor_product_id) DO UPDATE SET
            approved = TRUE`

	_, err := r.db.Exec(q, itemID, competitorProductID)
	return err
}

// GetViewCandidates returns the raw reconciliation rows for a competitor:
// every item joined against its matches, restricted to rows that either
// have no match at all or whose product belongs to the competitor. Items
// may appear more than once; the view builder collapses them. Items whose
// only matches point at other competitors do not appear here at all.
func (r *MatchRepository) GetViewCandidates(competitorID int) ([]models.ViewRow, error) {
	const q = `
        SELECT i.id AS item_id,
               i.sku AS our_sku,
               cp.barcode AS comp_barcode,
               cp.url AS comp_url,
               COALESCE(m.approved, FALSE) AS approved
        FROM items i
        LEFT JOIN matches m ON m.item_id = i.id
        LEFT JOIN competitor_products cp ON cp.id = m.competitor_product_id
        WHERE m.id IS NULL OR cp.competitor_id = $1
        ORDER BY i.id ASC, m.id ASC`

	var rows []models.ViewRow
	if err := r.db.Select(&rows, q, competitorID); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetCompareRows returns one row per approved match against the given
// competitor's products. Items without an approved match are absent.
func (r *MatchRepository) GetCompareRows(competitorID int) ([]models.CompareRow, error) {
	const q = `
        SELECT i.sku AS our_sku,
               cp.sku AS comp_sku,
               i.name AS our_name,
               cp.name AS comp_name,
               i.price AS our_price
        FROM matches m
        JOIN items i ON i.id = m.item_id
        JOIN competitor_products cp ON cp.id = m.competitor_product_id
        WHERE m.approved = TRUE AND cp.competitor_id = $1
        ORDER BY i.sku ASC`

	var rows []models.CompareRow
	if err := r.db.Select(&rows, q, competitorID); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTagReportCandidates returns the raw report rows for the items of a
// tag: each item with its approved matches, competitor fields left NULL
// when the match points elsewhere or does not exist. The report builder
// collapses to one row per item.
func (r *MatchRepository) GetTagReportCandidates(competitorID, tagID int) ([]models.TagReportRow, error) {
	const q = `
        SELECT i.id AS item_id,
               i.sku AS our_sku,
               i.name AS our_name,
               i.price AS our_price,
               cp.sku AS comp_sku,
               cp.name AS comp_name
        FROM items i
        JOIN item_tags it ON it.item_id = i.id
        LEFT JOIN matches m ON m.item_id = i.id AND m.approved = TRUE
        LEFT JOIN competitor_products cp ON cp.id = m.competitor_product_id AND cp.competitor_id = $1
        WHERE it.tag_id = $2
        ORDER BY i.id ASC, m.id ASC`

	var rows []models.TagReportRow
	if err := r.db.Select(&rows, q, competitorID, tagID); err != nil {
		return nil, err
	}
	return rows, nil
}

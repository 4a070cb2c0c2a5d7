package models

import "time"

// Competitor is an external catalog source, e.g. "praktiker".
// Seeded idempotently at process start.
type Competitor struct {
	ID        int       `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	BaseURL   string    `db:"base_url" json:"baseUrl"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// CompetitorProduct is one entry of a competitor's catalog, unique per
// (competitor_id, sku). Rows are created lazily by the matching engine.
type CompetitorProduct struct {
	ID           int       `db:"id" json:"id"`
	CompetitorID int       `db:"competitor_id" json:"competitorId"`
	SKU          string    `db:"sku" json:"sku"`
	Name         string    `db:"name" json:"name"`
	URL          string    `db:"url" json:"url"`
	Barcode      *string   `db:"barcode" json:"barcode,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

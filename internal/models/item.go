package models

import "time"

// Item represents a product in our own catalog. Items are upserted by SKU
// from the ERP export and never deleted automatically.
type Item struct {
	ID        int       `db:"id" json:"id"`
	SKU       string    `db:"sku" json:"sku"`
	Name      string    `db:"name" json:"name"`
	Barcode   *string   `db:"barcode" json:"barcode,omitempty"`
	Price     float64   `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

package models

import "time"

// Match links one Item to one CompetitorProduct. At most one row exists
// per (item_id, competitor_product_id); the database enforces this.
type Match struct {
	ID                  int       `db:"id" json:"id"`
	ItemID              int       `db:"item_id" json:"itemId"`
	CompetitorProductID int       `db:"competitor_product_id" json:"competitorProductId"`
	Approved            bool      `db:"approved" json:"approved"`
	AutoByBarcode       bool      `db:"auto_by_barcode" json:"autoByBarcode"`
	CreatedAt           time.Time `db:"created_at" json:"-"`
}

// ViewRow is one line of the reconciliation view: every item appears
// exactly once, matched or not.
type ViewRow struct {
	ItemID      int     `db:"item_id" json:"itemId"`
	OurSKU      string  `db:"our_sku" json:"ourSku"`
	CompBarcode *string `db:"comp_barcode" json:"compBarcode"`
	CompURL     *string `db:"comp_url" json:"compUrl"`
	Approved    bool    `db:"approved" json:"approved"`
}

// CompareRow is one line of the approved-only price comparison.
// CompPrice and Diff stay nil until a live pricing source exists.
type CompareRow struct {
	OurSKU    string   `db:"our_sku" json:"ourSku"`
	CompSKU   *string  `db:"comp_sku" json:"compSku"`
	OurName   string   `db:"our_name" json:"ourName"`
	CompName  *string  `db:"comp_name" json:"compName"`
	OurPrice  float64  `db:"our_price" json:"ourPrice"`
	CompPrice *float64 `json:"compPrice"`
	Diff      *float64 `json:"diff"`
}

package models

// TagReportRow is one line of the scheduled per-tag report. Unlike the
// comparison projection it keeps items without an approved match, with the
// competitor fields left nil.
type TagReportRow struct {
	ItemID   int     `db:"item_id" json:"itemId"`
	OurSKU   string  `db:"our_sku" json:"ourSku"`
	OurName  string  `db:"our_name" json:"ourName"`
	OurPrice float64 `db:"our_price" json:"ourPrice"`
	CompSKU  *string `db:"comp_sku" json:"compSku"`
	CompName *string `db:"comp_name" json:"compName"`
}

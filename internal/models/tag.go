package models

import "time"

// Tag is a named group of items with an optional report recipient.
type Tag struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// ItemTag links an item to a tag, unique per (item_id, tag_id).
type ItemTag struct {
	ID        int       `db:"id" json:"id"`
	ItemID    int       `db:"item_id" json:"itemId"`
	TagID     int       `db:"tag_id" json:"tagId"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

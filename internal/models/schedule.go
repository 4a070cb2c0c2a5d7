package models

import "time"

// Schedule binds a cron expression to a tag. Active schedules are
// materialized into cron entries on every dispatcher refresh.
type Schedule struct {
	ID        int       `db:"id" json:"id"`
	TagID     int       `db:"tag_id" json:"tagId"`
	Cron      string    `db:"cron" json:"cron"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// ScheduleWithTag is a schedules⋈tags row as read by the dispatcher.
type ScheduleWithTag struct {
	Schedule
	TagName  string  `db:"tag_name" json:"tagName"`
	TagEmail *string `db:"tag_email" json:"tagEmail,omitempty"`
}

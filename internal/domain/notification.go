package domain

import "time"

// Notification is a row in a resident's in-app inbox. Delivery is
// best-effort and at-least-once; duplicates on retry are acceptable.
type Notification struct {
	ID         int64     `json:"id"`
	ResidentID int64     `json:"resident_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	LinkTo     string    `json:"link_to"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

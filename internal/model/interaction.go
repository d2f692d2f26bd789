package model

import "time"

// Interaction is a logged touchpoint against a customer. Immutable after
// creation: the API exposes no update or delete for it.
type Interaction struct {
	ID         int64     `db:"id" json:"id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Type       string    `db:"type" json:"type"` // free-form: call, email, meeting, ...
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

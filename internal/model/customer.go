package model

import "time"

// Customer is a CRM record owned by exactly one user. Every query against
// this table is additionally filtered by user_id; ownership is enforced at
// query time, not by referential constraints.
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Company   string    `db:"company" json:"company"` // optional, empty when unset
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CustomerPage is the list response body.
type CustomerPage struct {
	Customers  []Customer `json:"customers"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// CustomerFilter narrows the owner-scoped list query.
type CustomerFilter struct {
	Search  string // substring OR across name/email/phone, case-insensitive
	Company string // substring on company, case-insensitive
	Page    int
	Limit   int
}

package model

import "time"

// User is an API account. Rows are created on registration and read on login;
// the API never updates or deletes them.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"` // stored normalized (trimmed, lowercased)
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

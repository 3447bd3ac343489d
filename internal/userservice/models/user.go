// Package models defines the rows the user service persists.
package models

import "time"

// User statuses.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusBanned   = "BANNED"
)

// User is an account in the chat application. Username doubles as the
// token subject, so it is unique and immutable after registration.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	AvatarURL    string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package models

import (
	"time"
)

// User is an authentication principal. Only the login check reads it.
type User struct {
	ID           string    `json:"id" db:"id" example:"665f1c2e9b1d4a0012345679"`
	Email        string    `json:"email" db:"email" example:"teacher@example.com"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

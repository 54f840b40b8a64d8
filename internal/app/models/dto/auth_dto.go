package dto

import "time"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"teacher@example.com"`
	Password string `json:"password" example:"password123"`
}

// LoginUser is the public part of the authenticated user
type LoginUser struct {
	ID    string `json:"id" example:"665f1c2e9b1d4a0012345679"`
	Email string `json:"email" example:"teacher@example.com"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message   string    `json:"message" example:"Login successful"`
	User      LoginUser `json:"user"`
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType" example:"Bearer"`
	ExpiresAt time.Time `json:"expiresAt"`
}

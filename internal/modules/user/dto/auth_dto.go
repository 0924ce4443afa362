package dto

import (
	"anoa.com/droneanalytics/internal/entity"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"looseemail"`
	Password string `json:"password" validate:"strongpassword"`
	Username string `json:"username" validate:"username"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"looseemail"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	User      *entity.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresIn int64        `json:"expiresIn"`
}

type MeResponse struct {
	User *entity.User `json:"user"`
}

package dto

import "github.com/google/uuid"

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	Admin   AdminResponse `json:"admin"`
}

type AdminResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

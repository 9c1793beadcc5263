package handlers

import (
	"errors"

	"github.com/campuskit/complaintbox/internal/dto"
	"github.com/campuskit/complaintbox/internal/middleware"
	"github.com/campuskit/complaintbox/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Username and password are required",
		})
	}

	token, admin, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid credentials",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.LoginResponse{
		Message: "Login successful",
		Token:   token,
		Admin:   dto.AdminResponse{ID: admin.ID, Username: admin.Username},
	})
}

// Verify lets the dashboard check that a stored token is still usable.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	adminID, err := middleware.GetAdminID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid or expired token",
		})
	}

	admin, err := h.authService.GetAdmin(adminID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid or expired token",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Token is valid",
		"admin":   dto.AdminResponse{ID: admin.ID, Username: admin.Username},
	})
}

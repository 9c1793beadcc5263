package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuskit/complaintbox/internal/config"
	"github.com/campuskit/complaintbox/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for every login failure. The message is
// deliberately generic: callers never learn whether the username or the
// password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Login verifies admin credentials and issues a signed, time-limited token.
func (s *AuthService) Login(username, password string) (string, *models.Admin, error) {
	var admin models.Admin
	if err := s.db.Where("username = ?", username).First(&admin).Error; err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":      admin.ID.String(),
		"username": admin.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.JWTExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &admin, nil
}

// GetAdmin resolves an admin account by ID, for token verification.
func (s *AuthService) GetAdmin(id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.First(&admin, "id = ?", id).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	return &admin, nil
}

// SeedAdmin creates the bootstrap admin account from config when the admins
// table is empty. A no-op when credentials are unset or an admin exists.
func (s *AuthService) SeedAdmin() error {
	if s.cfg.AdminUsername == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.Admin{
		ID:       uuid.New(),
		Username: s.cfg.AdminUsername,
		Password: string(hash),
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	slog.Info("bootstrap admin created", "username", admin.Username)
	return nil
}

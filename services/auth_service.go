package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/utils"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

type AuthService interface {
	Login(ctx context.Context, input models.Credentials) (string, error)
}

type AuthConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    []byte
}

type authService struct {
	cfg AuthConfig
	now func() time.Time
}

// NewAuthService builds the organizer login. With an empty password hash every
// login attempt is rejected.
func NewAuthService(cfg AuthConfig) AuthService {
	return &authService{cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, input models.Credentials) (string, error) {
	if s.cfg.PasswordHash == "" || input.Username != s.cfg.Username {
		return "", ErrAuthInvalidCredentials
	}
	if !utils.CheckPasswordHash(input.Password, s.cfg.PasswordHash) {
		return "", ErrAuthInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"username": input.Username,
		"role":     string(models.RoleOrganizer),
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

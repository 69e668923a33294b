package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"affilink/internal/config"
	"affilink/internal/models"
	"affilink/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAllowed         = errors.New("email not authorized")
)

// AuthService checks email/password credentials and the single-admin
// allow-list.
type AuthService struct {
	db           *gorm.DB
	cfg          config.Config
	auditService *AuditService
	logger       *slog.Logger
}

func NewAuthService(db *gorm.DB, cfg config.Config, auditService *AuditService, logger *slog.Logger) *AuthService {
	return &AuthService{
		db:           db,
		cfg:          cfg,
		auditService: auditService,
		logger:       logger,
	}
}

// SignIn returns the user's normalized email when the credentials match and
// the email is the allow-listed administrator. Store failures are reported as
// ErrInvalidCredentials so callers show a single generic message.
func (s *AuthService) SignIn(ctx context.Context, email, password, ip string) (string, error) {
	email = normalizeEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Login lookup failed", "error", err)
		}
		s.auditService.LogAction(email, ActionLoginFailed, email, nil, ip)
		return "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.auditService.LogAction(email, ActionLoginFailed, email, nil, ip)
		return "", ErrInvalidCredentials
	}

	if !s.IsAllowed(user.Email) {
		s.auditService.LogAction(user.Email, ActionLoginDenied, user.Email, nil, ip)
		return "", ErrNotAllowed
	}

	s.auditService.LogAction(user.Email, ActionLogin, user.Email, nil, ip)
	return user.Email, nil
}

func (s *AuthService) IsAllowed(email string) bool {
	return s.cfg.IsAllowedEmail(email)
}

func (s *AuthService) SignOut(email, ip string) {
	if email != "" {
		s.auditService.LogAction(email, ActionLogout, email, nil, ip)
	}
}

// EnsureAdmin creates the admin user, or resets its password, so a fresh
// deployment can log in with ADMIN_PASSWORD.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Email: email, PasswordHash: hash}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		s.logger.Info("Admin user created", "email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

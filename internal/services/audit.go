package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"affilink/internal/models"

	"gorm.io/gorm"
)

const (
	ActionLogin         = "LOGIN"
	ActionLoginFailed   = "LOGIN_FAILED"
	ActionLoginDenied   = "LOGIN_DENIED"
	ActionLogout        = "LOGOUT"
	ActionCreateProduct = "CREATE_PRODUCT"
	ActionDeleteProduct = "DELETE_PRODUCT"
)

const auditQueueSize = 100

// AuditService records admin activity from a background worker.
type AuditService struct {
	db           *gorm.DB
	logger       *slog.Logger
	auditChannel chan models.AuditLog
}

func NewAuditService(db *gorm.DB, logger *slog.Logger) *AuditService {
	return &AuditService{
		db:           db,
		logger:       logger,
		auditChannel: make(chan models.AuditLog, auditQueueSize),
	}
}

func (s *AuditService) Start(ctx context.Context) {
	s.logger.Info("Audit worker starting")
	for {
		select {
		case entry := <-s.auditChannel:
			if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
				s.logger.Error("Failed to write audit log", "action", entry.Action, "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Audit worker stopping")
			return
		}
	}
}

func (s *AuditService) LogAction(email, action, entityID string, details interface{}, ip string) {
	var detailStr string
	if details != nil {
		detailBytes, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("Audit details not serializable", "action", action, "error", err)
		}
		detailStr = string(detailBytes)
	}

	entry := models.AuditLog{
		Email:     email,
		Action:    action,
		EntityID:  entityID,
		Details:   detailStr,
		IPAddress: ip,
		Timestamp: time.Now(),
	}

	select {
	case s.auditChannel <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping log", "action", action)
	}
}

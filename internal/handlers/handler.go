package handlers

import (
	"log/slog"
	"time"

	"affilink/internal/config"
	"affilink/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	sessionName     = "affilink_session"
	sessionEmailKey = "admin_email"
	requestIDKey    = "request_id"
)

type Handler struct {
	cfg              config.Config
	logger           *slog.Logger
	catalogService   *services.CatalogService
	dashboardService *services.DashboardService
	clickRecorder    *services.ClickRecorder
	authService      *services.AuthService
	qrService        *services.QRService
	now              func() time.Time
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	catalogService *services.CatalogService,
	dashboardService *services.DashboardService,
	clickRecorder *services.ClickRecorder,
	authService *services.AuthService,
	qrService *services.QRService,
) *Handler {
	return &Handler{
		cfg:              cfg,
		logger:           logger,
		catalogService:   catalogService,
		dashboardService: dashboardService,
		clickRecorder:    clickRecorder,
		authService:      authService,
		qrService:        qrService,
		now:              time.Now,
	}
}

func (h *Handler) log(c *gin.Context) *slog.Logger {
	return h.logger.With(requestIDKey, c.GetString(requestIDKey))
}

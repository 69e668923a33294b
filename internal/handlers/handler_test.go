package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"affilink/internal/config"
	"affilink/internal/repository"
	"affilink/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testAdminEmail    = "owner@shop.test"
	testAdminPassword = "s3cret-pass"
)

func setupTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()

	db, err := repository.InitDB(config.Config{DatabaseURL: "sqlite://:memory:"})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{
		SessionSecret:      "test-secret-12345678901234567890123456789012",
		AllowedEmail:       testAdminEmail,
		BackendURL:         "https://backend.test",
		BackendAnonKey:     "anon-key",
		PublicBaseURL:      "https://shop.test",
		Timezone:           "UTC",
		DefaultDescription: "Default blurb",
	}

	telemetry := services.NewTelemetry(prometheus.NewRegistry())
	repo := repository.NewCatalogRepository(db)
	audit := services.NewAuditService(db, logger)
	catalog := services.NewCatalogService(repo, nil, audit, logger, cfg.DefaultDescription, time.Minute)
	dashboard := services.NewDashboardService(repo, logger, telemetry)
	recorder := services.NewClickRecorder(repo, logger, telemetry, nil)
	auth := services.NewAuthService(db, cfg, audit, logger)
	qr := services.NewQRService()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go recorder.Start(ctx)
	go audit.Start(ctx)

	require.NoError(t, auth.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword))

	h := NewHandler(cfg, logger, catalog, dashboard, recorder, auth, qr)
	return h, db
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := h.SetupRouter(nil)

	// Lets tests plant arbitrary session contents.
	r.GET("/test/session/:email", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(sessionEmailKey, c.Param("email"))
		session.Save()
		c.Status(http.StatusOK)
	})
	return r
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// loginAsAdmin returns the session cookie of a signed-in administrator.
func loginAsAdmin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/login", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	return cookie
}

func sessionFor(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test/session/"+email, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Header().Get("Set-Cookie")
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"affilink/internal/models"
	"affilink/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	h, db := setupTestHandler(t)
	gin.SetMode(gin.TestMode)

	limiter := services.NewIPRateLimiter(0.001, 2, time.Minute, h.logger)
	r := h.SetupRouter(limiter)

	p := models.Product{Name: "Lamp", AffiliateURL: "https://amzn.test/l"}
	require.NoError(t, db.Create(&p).Error)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/go/"+itoa(p.ID), nil)
		req.RemoteAddr = "203.0.113.7:5555"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusFound, http.StatusFound, http.StatusTooManyRequests}, codes)

	// Other clients keep their own budget.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/go/"+itoa(p.ID), nil)
	req.RemoteAddr = "198.51.100.1:5555"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)

	// Public catalog reads are not limited.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/products", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRequired(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(h)

	t.Run("Admin Session", func(t *testing.T) {
		cookie := sessionFor(t, r, testAdminEmail)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/session", nil)
		req.Header.Set("Cookie", cookie)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), testAdminEmail)
	})

	t.Run("Foreign Session Is Signed Out", func(t *testing.T) {
		cookie := sessionFor(t, r, "intruder@shop.test")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/session", nil)
		req.Header.Set("Cookie", cookie)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		cleared := w.Header().Get("Set-Cookie")
		require.NotEmpty(t, cleared)

		// The cleared cookie no longer carries any identity.
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/session", nil)
		req.Header.Set("Cookie", cleared)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Header().Get("Set-Cookie"))
	})
}

func TestAdminRequired_RejectsForeignSigningKey(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(h)

	// A session minted with a key other than the server's.
	forger := gin.New()
	forger.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte("change-me-change-me-change-me-32b"))))
	forger.GET("/mint", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(sessionEmailKey, testAdminEmail)
		session.Save()
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/mint", nil)
	forger.ServeHTTP(w, req)
	forged := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, forged)

	for _, path := range []string{"/api/dashboard", "/api/dashboard/export", "/api/session"} {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", path, nil)
		req.Header.Set("Cookie", forged)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

package handlers

import (
	"affilink/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	r.Use(h.RequestID())

	store := cookie.NewStore([]byte(h.cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   h.cfg.AppEnv == "production",
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Read by browsers on other origins.
	public := r.Group("/api/config")
	public.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET"},
	}))
	{
		public.GET("", h.ShowConfig)
		public.OPTIONS("", func(c *gin.Context) {})
	}

	r.GET("/api/products", h.ListProducts)
	r.GET("/api/products/:id", h.GetProduct)
	r.GET("/products/:id/qr", h.ProductQR)
	r.POST("/api/logout", h.Logout)

	limited := r.Group("/")
	if rateLimiter != nil {
		limited.Use(h.RateLimitMiddleware(rateLimiter))
	}
	{
		limited.GET("/go/:id", h.GoToProduct)
		limited.POST("/api/clicks", h.TrackClick)
		limited.POST("/api/login", h.Login)
	}

	admin := r.Group("/api")
	admin.Use(h.AdminRequired())
	{
		admin.GET("/session", h.ShowSession)
		admin.GET("/dashboard", h.ShowDashboard)
		admin.GET("/dashboard/export", h.ExportDashboard)
		admin.POST("/products", h.CreateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
	}

	return r
}

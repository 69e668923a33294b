package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShowConfig exposes the browser-facing configuration values.
func (h *Handler) ShowConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"backendUrl":     h.cfg.BackendURL,
		"backendAnonKey": h.cfg.BackendAnonKey,
		"allowedEmail":   h.cfg.AllowedEmail,
	})
}

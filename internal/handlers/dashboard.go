package handlers

import (
	"fmt"
	"net/http"

	"affilink/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ShowDashboard returns the click summary. Store failures yield an error
// message and no partial data.
func (h *Handler) ShowDashboard(c *gin.Context) {
	now := h.now().In(h.cfg.Location())
	summary, err := h.dashboardService.Load(c.Request.Context(), now)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load dashboard data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":        c.GetString(sessionEmailKey),
		"generated_at": now,
		"summary":      summary,
	})
}

func (h *Handler) ExportDashboard(c *gin.Context) {
	now := h.now().In(h.cfg.Location())
	summary, err := h.dashboardService.Load(c.Request.Context(), now)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load dashboard data"})
		return
	}

	data, err := services.ExportSummaryXLSX(summary, now)
	if err != nil {
		h.log(c).Error("Failed to build dashboard export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="clicks-%s.xlsx"`, now.Format("2006-01-02")))
	c.Data(http.StatusOK, xlsxContentType, data)
}

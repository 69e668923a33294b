package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"affilink/internal/models"
	"affilink/internal/repository"

	"github.com/gin-gonic/gin"
)

type TrackClickRequest struct {
	ProductID *uint `json:"product_id"`
}

// GoToProduct records a click for the product and redirects to its affiliate
// URL. The redirect never waits on the click insert.
func (h *Handler) GoToProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.log(c).Error("Failed to load product for redirect", "product_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product temporarily unavailable"})
		return
	}

	h.clickRecorder.RecordClickAsync(models.Click{
		ProductID: &product.ID,
		CreatedAt: h.now(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		IPAddress: c.ClientIP(),
	})

	c.Redirect(http.StatusFound, product.AffiliateURL)
}

// TrackClick is the beacon form of click recording for clients that navigate
// on their own. It always answers 202.
func (h *Handler) TrackClick(c *gin.Context) {
	var req TrackClickRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.ProductID != nil {
		h.clickRecorder.RecordClickAsync(models.Click{
			ProductID: req.ProductID,
			CreatedAt: h.now(),
			UserAgent: c.Request.UserAgent(),
			Referrer:  c.Request.Referer(),
			IPAddress: c.ClientIP(),
		})
	}
	c.Status(http.StatusAccepted)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

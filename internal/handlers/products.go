package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"affilink/internal/repository"
	"affilink/internal/services"

	"github.com/gin-gonic/gin"
)

type CreateProductRequest struct {
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	AffiliateURL string `json:"affiliate_url" binding:"required,url"`
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		h.log(c).Error("Failed to load products", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load products right now"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
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
		h.log(c).Error("Failed to load product", "product_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// ProductQR renders a PNG QR code pointing at the product's tracked link.
func (h *Handler) ProductQR(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if _, err := h.catalogService.GetProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.log(c).Error("Failed to load product for QR", "product_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load product"})
		return
	}

	size, _ := strconv.Atoi(c.Query("size"))
	png, err := h.qrService.GeneratePNG(services.QROptions{
		Content: services.TrackedLink(h.cfg.PublicBaseURL, id),
		Size:    size,
		FgColor: c.Query("fg"),
		BgColor: c.Query("bg"),
	})
	if err != nil {
		h.log(c).Error("Failed to render QR code", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), services.CreateProductDTO{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		AffiliateURL: req.AffiliateURL,
		ActorEmail:   c.GetString(sessionEmailKey),
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidProduct) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log(c).Error("Failed to create product", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	err := h.catalogService.DeleteProduct(c.Request.Context(), id, c.GetString(sessionEmailKey), c.ClientIP())
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.log(c).Error("Failed to delete product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

package handlers

import (
	"errors"
	"net/http"

	"affilink/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Enter your email and password."})
		return
	}

	session := sessions.Default(c)
	email, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrNotAllowed) {
			session.Clear()
			if err := session.Save(); err != nil {
				h.log(c).Error("Failed to clear session", "error", err)
			}
			c.JSON(http.StatusForbidden, gin.H{"error": "This email is not authorized to view the dashboard."})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
		return
	}

	session.Set(sessionEmailKey, email)
	if err := session.Save(); err != nil {
		h.log(c).Error("Failed to save session", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": email})
}

func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	email, _ := session.Get(sessionEmailKey).(string)
	session.Clear()
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
		return
	}
	h.authService.SignOut(email, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) ShowSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"email": c.GetString(sessionEmailKey)})
}

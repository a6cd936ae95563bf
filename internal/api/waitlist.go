package api

import (
	"errors"
	"net/http"

	"vibin_quest_backend/internal/middleware"
	"vibin_quest_backend/internal/service"
	"vibin_quest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type waitlistRoutes struct {
	ws service.WaitlistServiceI
}

func NewWaitlistRoutes(handler *gin.Engine, ws service.WaitlistServiceI, adminAuth *middleware.AdminAuth) {
	r := &waitlistRoutes{ws: ws}

	h := handler.Group("/waitlist")
	{
		h.POST("", r.Signup)

		admin := h.Group("/admin")
		admin.Use(adminAuth.AdminOnly())
		{
			admin.GET("/emails", r.ListEmails)
			admin.DELETE("/emails/:email", r.DeleteEmail)
		}
	}
}

type SignupRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (r *waitlistRoutes) Signup(c *gin.Context) {
	log := logger.Logger()

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}

	position, err := r.ws.Signup(c.Request.Context(), req.Email)
	if err != nil {
		log.Error("failed to sign up email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign up email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"index": position,
	})
}

func (r *waitlistRoutes) ListEmails(c *gin.Context) {
	log := logger.Logger()

	entries, err := r.ws.List(c.Request.Context())
	if err != nil {
		log.Error("failed to list waitlist emails", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list waitlist emails"})
		return
	}

	response := make([]gin.H, len(entries))
	for i, entry := range entries {
		response[i] = gin.H{
			"email":     entry.Email,
			"index":     entry.Position,
			"createdAt": entry.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *waitlistRoutes) DeleteEmail(c *gin.Context) {
	log := logger.Logger()

	err := r.ws.Delete(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		log.Error("failed to delete waitlist email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete waitlist email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": true,
	})
}

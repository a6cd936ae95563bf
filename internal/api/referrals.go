package api

import (
	"errors"
	"net/http"

	"vibin_quest_backend/internal/model"
	"vibin_quest_backend/internal/service"
	"vibin_quest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type referralRoutes struct {
	rs service.ReferralServiceI
}

func NewReferralRoutes(handler *gin.Engine, rs service.ReferralServiceI) {
	r := &referralRoutes{rs: rs}
	h := handler.Group("/referrals")
	{
		h.POST("/link/:walletAddress", r.LinkAccounts)
		h.POST("/verify/:walletAddress", r.Verify)
		h.GET("/status/:walletAddress", r.Status)
		h.GET("/stats/:walletAddress", r.Stats)
		h.GET("/list/:walletAddress", r.ListReferred)
	}
}

type LinkAccountsRequest struct {
	XHandle        *string `json:"xHandle"`
	TelegramHandle *string `json:"telegramHandle"`
	TelegramID     *int64  `json:"telegramId"`
}

func (r *referralRoutes) LinkAccounts(c *gin.Context) {
	log := logger.Logger()

	var req LinkAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	status, err := r.rs.LinkAccounts(c.Request.Context(), c.Param("walletAddress"),
		req.XHandle, req.TelegramHandle, req.TelegramID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		case errors.Is(err, service.ErrNothingToUpdate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one handle is required"})
		default:
			log.Error("failed to link accounts", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link accounts"})
		}
		return
	}

	c.JSON(http.StatusOK, statusResponse(status))
}

func (r *referralRoutes) Verify(c *gin.Context) {
	log := logger.Logger()

	stats, err := r.rs.Verify(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		case errors.Is(err, service.ErrAccountsNotLinked):
			c.JSON(http.StatusBadRequest, gin.H{"error": "required social accounts are not linked"})
		case errors.Is(err, service.ErrNoReferrer):
			c.JSON(http.StatusBadRequest, gin.H{"error": "wallet has no referrer"})
		default:
			log.Error("failed to verify referral", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify referral"})
		}
		return
	}

	c.JSON(http.StatusOK, statsResponse(stats))
}

func (r *referralRoutes) Status(c *gin.Context) {
	log := logger.Logger()

	status, err := r.rs.Status(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		log.Error("failed to get referral status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral status"})
		return
	}

	c.JSON(http.StatusOK, statusResponse(status))
}

func (r *referralRoutes) Stats(c *gin.Context) {
	log := logger.Logger()

	stats, err := r.rs.Stats(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		log.Error("failed to get referral stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral stats"})
		return
	}

	c.JSON(http.StatusOK, statsResponse(stats))
}

func (r *referralRoutes) ListReferred(c *gin.Context) {
	log := logger.Logger()

	referred, err := r.rs.ListReferred(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		log.Error("failed to list referred users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list referred users"})
		return
	}

	response := make([]gin.H, len(referred))
	for i, ref := range referred {
		response[i] = gin.H{
			"walletAddress": ref.WalletAddress,
			"xHandle":       ref.XHandle,
			"points":        ref.Points,
			"verified":      ref.Verified,
			"joinedAt":      ref.JoinedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

func statusResponse(status *model.ReferralStatus) gin.H {
	return gin.H{
		"walletAddress":  status.WalletAddress,
		"xLinked":        status.XLinked,
		"telegramLinked": status.TelegramLinked,
		"verified":       status.Verified,
	}
}

func statsResponse(stats *model.ReferralStats) gin.H {
	return gin.H{
		"walletAddress": stats.WalletAddress,
		"volume":        stats.Volume,
		"diversity":     stats.Diversity,
		"history":       stats.History,
		"today":         stats.Today,
		"verified":      stats.Verified,
	}
}

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

type spotifyRoutes struct {
	ss service.SpotifyServiceI
}

func NewSpotifyRoutes(handler *gin.Engine, ss service.SpotifyServiceI) {
	r := &spotifyRoutes{ss: ss}
	h := handler.Group("/spotify")
	{
		h.POST("/update", r.UpdateListening)
		h.POST("/claim-status", r.ClaimStatus)
		h.POST("/claim", r.Claim)
		h.POST("/points", r.Points)
		h.GET("/get-index-of-email", r.GetIndexOfEmail)
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/user/:email", r.GetUserByEmail)
		h.GET("/ws/:walletAddress", r.ClaimSocket)
		h.GET("/:walletAddress", r.GetUserByWallet)
	}
}

type UpdateListeningRequest struct {
	WalletAddress    string  `json:"walletAddress" binding:"required"`
	SpotifyEmail     *string `json:"spotifyEmail"`
	ListeningMinutes int     `json:"listeningMinutes"`
	TrackCount       int     `json:"trackCount"`
	PendingPoints    int64   `json:"pendingPoints"`
	ReferralCode     *string `json:"referralCode"`
}

func (r *spotifyRoutes) UpdateListening(c *gin.Context) {
	log := logger.Logger()

	var req UpdateListeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.ss.UpdateListening(c.Request.Context(), service.ListeningUpdate{
		WalletAddress:    req.WalletAddress,
		SpotifyEmail:     req.SpotifyEmail,
		ListeningMinutes: req.ListeningMinutes,
		TrackCount:       req.TrackCount,
		PendingPoints:    req.PendingPoints,
		ReferralCode:     req.ReferralCode,
	})
	if err != nil {
		log.Error("failed to update listening data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update listening data"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

type IdentifierRequest struct {
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
}

func (r *spotifyRoutes) ClaimStatus(c *gin.Context) {
	log := logger.Logger()

	var req IdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Email == "" && req.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email or walletAddress is required"})
		return
	}

	status, err := r.ss.ClaimStatus(c.Request.Context(), service.UserIdentifier{
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to compute claim status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute claim status"})
		return
	}

	c.JSON(http.StatusOK, claimStatusResponse(status))
}

func claimStatusResponse(status *model.ClaimStatus) gin.H {
	return gin.H{
		"canClaim":           status.CanClaim,
		"nextClaimDate":      status.NextClaimDate,
		"timeUntilNextClaim": status.TimeUntilNextClaim.Milliseconds(),
		"days":               status.DaysRemaining,
		"hours":              status.HoursRemaining,
		"minutes":            status.MinutesRemaining,
		"pendingPoints":      status.PendingPoints,
	}
}

type ClaimRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

func (r *spotifyRoutes) Claim(c *gin.Context) {
	log := logger.Logger()

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	claimed, err := r.ss.Claim(c.Request.Context(), req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrClaimNotAvailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "claim cooldown is still active"})
		default:
			log.Error("failed to claim points", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim points"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claimed": claimed,
	})
}

func (r *spotifyRoutes) Points(c *gin.Context) {
	log := logger.Logger()

	var req IdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Email == "" && req.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email or walletAddress is required"})
		return
	}

	points, err := r.ss.Points(c.Request.Context(), service.UserIdentifier{
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get points", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points": points,
	})
}

func (r *spotifyRoutes) GetIndexOfEmail(c *gin.Context) {
	log := logger.Logger()

	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	index, err := r.ss.WaitlistIndex(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no index associated with the provided email"})
			return
		}
		log.Error("failed to get waitlist index", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get waitlist index"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"index": index,
	})
}

func (r *spotifyRoutes) GetUserByEmail(c *gin.Context) {
	log := logger.Logger()

	user, err := r.ss.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided email"})
			return
		}
		log.Error("failed to get user by email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

func (r *spotifyRoutes) GetUserByWallet(c *gin.Context) {
	log := logger.Logger()

	user, err := r.ss.GetUserByWallet(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided wallet"})
			return
		}
		log.Error("failed to get user by wallet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"walletAddress":    user.WalletAddress,
		"spotifyEmail":     user.SpotifyEmail,
		"xHandle":          user.XHandle,
		"telegramHandle":   user.TelegramHandle,
		"referralCode":     user.ReferralCode,
		"referrerWallet":   user.ReferrerWallet,
		"points":           user.Points,
		"pendingPoints":    user.PendingPoints,
		"lastClaimDate":    user.LastClaimDate,
		"referralVerified": user.ReferralVerified,
		"replyPosted":      user.ReplyPosted,
		"listeningMinutes": user.ListeningMinutes,
		"trackCount":       user.TrackCount,
		"registrationDate": user.RegistrationDate,
	}
}

func (r *spotifyRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	board, err := r.ss.GetLeaderboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	response := make([]gin.H, len(board))
	for i, entry := range board {
		response[i] = gin.H{
			"walletAddress": entry.WalletAddress,
			"xHandle":       entry.XHandle,
			"points":        entry.Points,
			"referrals":     entry.Referrals,
		}
	}

	c.JSON(http.StatusOK, response)
}

package api

import (
	"context"
	"errors"
	"net/http"

	"vibin_quest_backend/internal/xapi"
	"vibin_quest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const (
	defaultPostText  = "Vibin' Quest is live. Stake, listen, earn. Join the vibe ⚡"
	defaultReplyText = "LFG!"
)

// ReplyTracker records that the automated reply went out for a wallet.
type ReplyTracker interface {
	MarkReplyPosted(ctx context.Context, walletAddress string) error
}

type xRoutes struct {
	client  *xapi.Client
	tracker ReplyTracker
}

func NewXRoutes(handler *gin.Engine, client *xapi.Client, tracker ReplyTracker) {
	r := &xRoutes{client: client, tracker: tracker}
	h := handler.Group("/api/x")
	{
		h.POST("/oauth-callback", r.OAuthCallback)
		h.POST("/post", r.PostTweet)
		h.POST("/reply", r.ReplyTweet)
		h.POST("/user-profile", r.UserProfile)
	}
}

type OAuthCallbackRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	RedirectURI  string `json:"redirect_uri"`
}

func (r *xRoutes) OAuthCallback(c *gin.Context) {
	log := logger.Logger()

	var req OAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Code == "" || req.CodeVerifier == "" || req.RedirectURI == "" || !r.client.HasCredentials() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters"})
		return
	}

	token, err := r.client.ExchangeCode(c.Request.Context(), req.Code, req.CodeVerifier, req.RedirectURI)
	if err != nil {
		r.relayError(c, "oauth token exchange failed", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", token)
}

type PostTweetRequest struct {
	AccessToken   string `json:"accessToken"`
	Text          string `json:"text"`
	WalletAddress string `json:"walletAddress"`
}

func (r *xRoutes) PostTweet(c *gin.Context) {
	log := logger.Logger()

	var req PostTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accessToken is required"})
		return
	}

	text := req.Text
	if text == "" {
		text = defaultPostText
	}

	body, err := r.client.PostTweet(c.Request.Context(), req.AccessToken, text)
	if err != nil {
		r.relayError(c, "tweet post failed", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

type ReplyTweetRequest struct {
	AccessToken   string `json:"accessToken"`
	TweetID       string `json:"tweetId"`
	Text          string `json:"text"`
	WalletAddress string `json:"walletAddress"`
}

func (r *xRoutes) ReplyTweet(c *gin.Context) {
	log := logger.Logger()

	var req ReplyTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.AccessToken == "" || req.TweetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accessToken and tweetId are required"})
		return
	}

	text := req.Text
	if text == "" {
		text = defaultReplyText
	}

	body, err := r.client.ReplyToTweet(c.Request.Context(), req.AccessToken, req.TweetID, text)
	if err != nil {
		r.relayError(c, "tweet reply failed", err)
		return
	}

	if req.WalletAddress != "" {
		if err := r.tracker.MarkReplyPosted(c.Request.Context(), req.WalletAddress); err != nil {
			log.Error("failed to mark reply posted",
				zap.Error(err),
				zap.String("wallet_address", req.WalletAddress))
		}
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

type UserProfileRequest struct {
	AccessToken string `json:"accessToken"`
}

func (r *xRoutes) UserProfile(c *gin.Context) {
	log := logger.Logger()

	var req UserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accessToken is required"})
		return
	}

	body, err := r.client.UserProfile(c.Request.Context(), req.AccessToken)
	if err != nil {
		r.relayError(c, "profile fetch failed", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// relayError mirrors the provider's status and body when the upstream
// answered, and falls back to a 500 with the stringified error otherwise.
func (r *xRoutes) relayError(c *gin.Context, msg string, err error) {
	log := logger.Logger()

	var upstream *xapi.UpstreamError
	if errors.As(err, &upstream) {
		log.Info(msg, zap.Int("status", upstream.StatusCode))
		c.Data(upstream.StatusCode, "application/json; charset=utf-8", upstream.Body)
		return
	}

	log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

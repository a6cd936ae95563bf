package api

import (
	"context"
	"net/http"
	"time"

	"vibin_quest_backend/internal/service"
	"vibin_quest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const claimPushInterval = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

type socketMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ClaimSocket pushes the claim countdown to the client instead of having
// the frontend poll /claim-status on an interval.
func (r *spotifyRoutes) ClaimSocket(c *gin.Context) {
	log := logger.Logger()

	walletAddress := c.Param("walletAddress")
	if _, err := r.ss.GetUserByWallet(c.Request.Context(), walletAddress); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided wallet"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	go r.claimCountdownLoop(conn, walletAddress)
}

func (r *spotifyRoutes) claimCountdownLoop(conn *websocket.Conn, walletAddress string) {
	log := logger.Logger()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(claimPushInterval)
	defer ticker.Stop()

	for {
		status, err := r.ss.ClaimStatus(context.Background(), service.UserIdentifier{WalletAddress: walletAddress})
		if err != nil {
			log.Error("failed to compute claim status for socket",
				zap.Error(err),
				zap.String("wallet_address", walletAddress))
			return
		}

		out, err := json.Marshal(socketMessage{
			Type:    "claim_status",
			Payload: claimStatusResponse(status),
		})
		if err != nil {
			log.Error("failed to marshal claim status", zap.Error(err))
			return
		}

		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			return
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

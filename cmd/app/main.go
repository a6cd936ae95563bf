package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"vibin_quest_backend/internal/api"
	"vibin_quest_backend/internal/middleware"
	"vibin_quest_backend/internal/repository"
	"vibin_quest_backend/internal/service"
	"vibin_quest_backend/internal/xapi"
	"vibin_quest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	rewards := service.RewardsConfig{
		ClaimCooldown:  time.Duration(cfg.Rewards.ClaimCooldownHours) * time.Hour,
		ClaimReward:    cfg.Rewards.ClaimReward,
		ReferralReward: cfg.Rewards.ReferralReward,
	}

	var verifier service.TelegramVerifier
	if cfg.Telegram.VerifyMembership {
		botVerifier, err := service.NewBotVerifier(service.TelegramConfig{
			BotToken:  cfg.Telegram.BotToken,
			ChannelID: cfg.Telegram.ChannelID,
		})
		if err != nil {
			zapLogger.Fatal("Failed to initialize telegram verifier", zap.Error(err))
		}
		verifier = botVerifier
	}

	spotifyService := service.NewSpotifyService(repo, rewards)
	referralService := service.NewReferralService(repo, verifier, rewards.ReferralReward)
	waitlistService := service.NewWaitlistService(repo)

	xClient := xapi.New(xapi.Config{
		ClientID:     cfg.X.ClientID,
		ClientSecret: cfg.X.ClientSecret,
		APIBaseURL:   cfg.X.APIBaseURL,
	})

	adminAuth := middleware.NewAdminAuth(cfg.Admin.Token)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	api.NewSpotifyRoutes(router, spotifyService)
	api.NewReferralRoutes(router, referralService)
	api.NewWaitlistRoutes(router, waitlistService, adminAuth)
	api.NewXRoutes(router, xClient, spotifyService)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}

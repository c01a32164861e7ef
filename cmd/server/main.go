package main

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/soranokaze/glimpanel/internal/bootstrap"
	"github.com/soranokaze/glimpanel/internal/config"
	"github.com/soranokaze/glimpanel/internal/handler"
	"github.com/soranokaze/glimpanel/internal/middleware"
	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/soranokaze/glimpanel/internal/repository"
	"github.com/soranokaze/glimpanel/internal/service"
	"github.com/soranokaze/glimpanel/pkg/database"
	"github.com/soranokaze/glimpanel/pkg/logger"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db := database.Connect()
	if err := migrate(db); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		logger.Fatalf("failed to seed roles: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	claimRepo := repository.NewDailyClaimRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	streamerRepo := repository.NewStreamerRepository(db)

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDev(db, userRepo, streamerRepo); err != nil {
			logger.Fatalf("failed to seed dev data: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	pointsService := service.NewPointsService(pointsRepo)
	claimService, err := service.NewDailyClaimService(claimRepo, pointsRepo, cfg.ClaimTimezone, cfg.ClaimRewardMin, cfg.ClaimRewardMax)
	if err != nil {
		logger.Fatalf("failed to init daily claim service: %v", err)
	}
	giftService := service.NewGiftService(giftRepo, pointsRepo, streamerRepo)
	streamerService := service.NewStreamerService(streamerRepo, giftRepo)
	guard := service.NewSubmissionGuard(redisClient, cfg.GiftLockTTL)
	cooldown := service.NewCooldown(redisClient, cfg.ClaimCooldown)

	pointsHandler := handler.NewPointsHandler(pointsService, claimService, cooldown)
	giftHandler := handler.NewGiftHandler(giftService, guard)
	streamerHandler := handler.NewStreamerHandler(streamerService)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/points", pointsHandler.GetBalance)
		api.GET("/points/history", pointsHandler.GetHistory)
		api.POST("/points/claim", pointsHandler.Claim)

		api.POST("/gifts", giftHandler.SendGift)
		api.GET("/streamers/top", streamerHandler.GetTopStreamers)
		api.GET("/streamers/:id/gifts", streamerHandler.GetStreamerGifts)

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/points/credit", pointsHandler.AdminCredit)
		}
	}

	// Periodic ledger audit.
	auditor := service.NewLedgerAuditor(db)
	go func() {
		ticker := time.NewTicker(cfg.AuditInterval)
		defer ticker.Stop()

		for range ticker.C {
			anomalies, err := auditor.RunOnce(context.Background())
			if err != nil {
				logger.Errorf("ledger audit failed: %v", err)
				continue
			}
			if anomalies > 0 {
				logger.Errorf("ledger audit found %d anomalies", anomalies)
			}
		}
	}()

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Streamer{},
		&model.PointBalance{},
		&model.PointHistory{},
		&model.DailyClaim{},
		&model.GiftTransfer{},
		&model.StreamerInbox{},
	)
}

func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		logger.Warn("REDIS_URL not set, submission guard and rate limits disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warnf("invalid REDIS_URL, submission guard and rate limits disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("redis unreachable, submission guard and rate limits will fail open: %v", err)
	}

	return client
}

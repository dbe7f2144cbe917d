package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campfirehq/campfire-backend/internal/db"
	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/handlers"
	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/middleware"
	"github.com/campfirehq/campfire-backend/internal/observability"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/server"
	"github.com/campfirehq/campfire-backend/internal/services"
	"github.com/campfirehq/campfire-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	serverPort := utils.GetEnv("SERVER_PORT", "8080", log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "campfire-backend",
		Environment: logMode,
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Point policy
	policy := gamification.DefaultPolicy()
	if policyPath := utils.GetEnv("POINT_POLICY_PATH", "", log); policyPath != "" {
		policy, err = gamification.LoadPolicy(policyPath)
		if err != nil {
			log.Error("Could not load point policy file", "path", policyPath, "error", err)
			os.Exit(1)
		}
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis (windowed leaderboards; optional)
	var rdb *redis.Client
	if redisAddr := utils.GetEnv("REDIS_ADDR", "", log); redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:        redisAddr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis ping failed, windowed leaderboards disabled", "error", err)
			rdb = nil
		}
		cancel()
	} else {
		log.Warn("REDIS_ADDR not set, windowed leaderboards disabled")
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	communityRepo := repos.NewCommunityRepo(thePG, log)
	communityMemberRepo := repos.NewCommunityMemberRepo(thePG, log)
	liveSessionRepo := repos.NewLiveSessionRepo(thePG, log)
	participationRepo := repos.NewParticipationRepo(thePG, log)
	achievementRepo := repos.NewAchievementRepo(thePG, log)

	if err := postgresService.SeedAchievementCatalog(context.Background(), achievementRepo); err != nil {
		log.Warn("Failed to seed achievement catalog", "error", err)
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, achievementRepo)
	communityService := services.NewCommunityService(thePG, log, communityRepo, communityMemberRepo, liveSessionRepo)
	participationService := services.NewParticipationService(thePG, log, participationRepo, policy)
	progressionService := services.NewProgressionService(thePG, log, userRepo, achievementRepo)
	leaderboardService := services.NewLeaderboardService(thePG, log, rdb, communityMemberRepo, userRepo)
	liveSessionService := services.NewLiveSessionService(thePG, log, liveSessionRepo, communityMemberRepo, participationService, progressionService, leaderboardService)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	liveSessionHandler := handlers.NewLiveSessionHandler(liveSessionService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		ServiceName:        "campfire-backend",
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		UserHandler:        userHandler,
		CommunityHandler:   communityHandler,
		LiveSessionHandler: liveSessionHandler,
		LeaderboardHandler: leaderboardHandler,
	})

	log.Info("Starting server...", "port", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

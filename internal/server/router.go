package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/campfirehq/campfire-backend/internal/handlers"
	"github.com/campfirehq/campfire-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName        string
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	UserHandler        *handlers.UserHandler
	CommunityHandler   *handlers.CommunityHandler
	LiveSessionHandler *handlers.LiveSessionHandler
	LeaderboardHandler *handlers.LeaderboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.GET("/user/achievements", cfg.UserHandler.GetAchievements)
	// Communities
	protected.POST("/communities", cfg.CommunityHandler.Create)
	protected.POST("/communities/:id/join", cfg.CommunityHandler.Join)
	protected.POST("/communities/:id/sessions", cfg.CommunityHandler.ScheduleSession)
	protected.GET("/communities/:id/sessions", cfg.CommunityHandler.ListSessions)
	// Live sessions
	protected.POST("/sessions/:id/join", cfg.LiveSessionHandler.Join)
	protected.POST("/sessions/:id/events", cfg.LiveSessionHandler.Event)
	protected.POST("/sessions/:id/leave", cfg.LiveSessionHandler.Leave)
	// Leaderboards
	protected.GET("/communities/:id/leaderboard", cfg.LeaderboardHandler.Top)
	protected.GET("/communities/:id/leaderboard/me", cfg.LeaderboardHandler.MyRank)

	return router
}

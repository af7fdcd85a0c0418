package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/handlers"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/services"
	"github.com/videotube/backend/internal/storage"
	"github.com/videotube/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *mongo.Database, cfg *config.Config, assets storage.AssetStorage) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	videoRepo := repositories.NewMongoVideoRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)
	tweetRepo := repositories.NewMongoTweetRepository(db)
	likeRepo := repositories.NewMongoLikeRepository(db)
	subscriptionRepo := repositories.NewMongoSubscriptionRepository(db)
	playlistRepo := repositories.NewMongoPlaylistRepository(db)

	// --- Initialize Services ---
	tokenService := auth.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(userRepo, tokenService)
	likeService := services.NewLikeService(likeRepo, subscriptionRepo, userRepo, videoRepo, commentRepo, tweetRepo)
	historyService := services.NewHistoryService(userRepo, videoRepo)
	viewService := services.NewViewService(userRepo, videoRepo, commentRepo, tweetRepo, likeRepo, subscriptionRepo, playlistRepo, historyService)
	videoService := services.NewVideoService(videoRepo, commentRepo, likeRepo, playlistRepo)

	// --- Route groups ---
	// public: no credentials inspected
	// optional: credentials resolved when present, for viewer-scoped flags
	// protected: valid access token required
	public := e.Group("/api/v1/auth")
	optional := e.Group("/api/v1")
	optional.Use(middleware.OptionalAuth(authService))
	protected := e.Group("/api/v1")
	protected.Use(middleware.RequireAuth(authService))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	authHandler := handlers.NewAuthHandler(authService, assets)
	authHandler.RegisterAuthRoutes(public, protected)
	log.Println("Auth routes configured.")

	userHandler := handlers.NewUserHandler(authService, viewService, assets)
	userHandler.RegisterUserRoutes(optional, protected)
	log.Println("User routes configured.")

	videoHandler := handlers.NewVideoHandler(videoService, viewService, assets)
	videoHandler.RegisterVideoRoutes(optional, protected)
	log.Println("Video routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, videoRepo, likeRepo, viewService)
	commentHandler.RegisterCommentRoutes(optional, protected)
	log.Println("Comment routes configured.")

	tweetHandler := handlers.NewTweetHandler(tweetRepo, likeRepo, viewService)
	tweetHandler.RegisterTweetRoutes(optional, protected)
	log.Println("Tweet routes configured.")

	likeHandler := handlers.NewLikeHandler(likeService, viewService)
	likeHandler.RegisterLikeRoutes(protected)
	log.Println("Like routes configured.")

	subscriptionHandler := handlers.NewSubscriptionHandler(likeService, subscriptionRepo, userRepo)
	subscriptionHandler.RegisterSubscriptionRoutes(optional, protected)
	log.Println("Subscription routes configured.")

	playlistHandler := handlers.NewPlaylistHandler(playlistRepo, videoRepo, viewService)
	playlistHandler.RegisterPlaylistRoutes(optional, protected)
	log.Println("Playlist routes configured.")

	dashboardHandler := handlers.NewDashboardHandler(viewService)
	dashboardHandler.RegisterDashboardRoutes(protected)
	log.Println("Dashboard routes configured.")

	log.Println("All routes configured.")
}

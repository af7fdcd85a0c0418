package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/router"
	"github.com/videotube/backend/internal/storage"
	"github.com/videotube/backend/pkg/config"
	"github.com/videotube/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	database := db.Mongo.Database(cfg.MongoDBName)

	ctx := context.Background()
	if err := repositories.EnsureIndexes(ctx, database); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Initialize asset storage
	assets, err := storage.NewMinIOStorage(ctx, storage.MinIOConfig{
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize asset storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, database, cfg, assets)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

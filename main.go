package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"gatherly-api/config"
	"gatherly-api/database"
	"gatherly-api/jobs"
	"gatherly-api/middleware"
	"gatherly-api/routes"
	"gatherly-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Services shared by controllers
	emailService := services.NewEmailService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Printf("Warning: object storage disabled: %v", err)
		storageService = nil
	}

	// Background maintenance
	cleanupJob := jobs.NewInviteCleanupJob(db, jobs.DefaultCleanupInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	// Create router
	router := gin.Default()

	// Setup CORS middleware
	router.Use(routes.SetupCORS())

	// Security headers and per-IP rate limiting
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(300, 30))

	// Setup routes
	routes.SetupRoutes(router, db, cfg, emailService, storageService)

	// Start server
	log.Printf("Starting Gatherly API server on port %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

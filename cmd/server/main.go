// @title           Tarot Readings Backend API
// @version         1.0.0
// @description     Backend API for the tarot reading marketplace. Requesters create paid reading requests, readers claim and fulfill them, and payment is captured on the reader's connected account at fulfillment time.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"
	"net/url"

	"tarot-readings-backend/docs"
	"tarot-readings-backend/internal/config"
	"tarot-readings-backend/internal/database"
	"tarot-readings-backend/internal/handlers"
	"tarot-readings-backend/internal/middleware"
	"tarot-readings-backend/internal/payments"
	"tarot-readings-backend/internal/readings"
	"tarot-readings-backend/internal/store"
	"tarot-readings-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	defer migrator.Close()
	if err := migrator.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully")

	dbClient, err := store.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	paymentsClient := payments.NewClient(cfg.StripeSecretKey)

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	manager := readings.NewManager(dbClient, paymentsClient, realtimeClient, cfg.FeePercentBps, cfg.FeeFixed)

	requestsHandler := handlers.NewRequestsHandler(manager, dbClient)
	claimsHandler := handlers.NewClaimsHandler(manager, dbClient)
	reviewsHandler := handlers.NewReviewsHandler(manager, dbClient)
	photosHandler := handlers.NewPhotosHandler(dbClient, storageClient)
	readersHandler := handlers.NewReadersHandler(dbClient)
	symbolsHandler := handlers.NewSymbolsHandler(dbClient)
	spreadsHandler := handlers.NewSpreadsHandler()
	webhookHandler := handlers.NewWebhookHandler(cfg, manager)
	sweepHandler := handlers.NewSweepHandler(cfg, dbClient)

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")

	// Spread catalog (no auth)
	api.GET("/spreads", spreadsHandler.ListSpreads)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))

	// Requester surface
	authed.POST("/requests", requestsHandler.CreateRequest)
	authed.GET("/requests", requestsHandler.ListRequests)
	authed.GET("/requests/fulfilled", requestsHandler.ListFulfilledRequests)
	authed.POST("/requests/:request_id/cancel", requestsHandler.CancelRequest)
	authed.POST("/requests/:request_id/mark-paid", requestsHandler.MarkPaid)
	authed.POST("/requests/:request_id/review", reviewsHandler.ReviewRequest)
	authed.GET("/symbols", symbolsHandler.ListSymbols)

	// Reader surface
	authed.GET("/requests/available", claimsHandler.ListAvailableRequests)
	authed.GET("/requests/claimed", claimsHandler.ListClaimedRequests)
	authed.POST("/requests/:request_id/claim", claimsHandler.ClaimRequest)
	authed.POST("/requests/:request_id/release", claimsHandler.ReleaseRequest)
	authed.POST("/requests/:request_id/fulfill", claimsHandler.FulfillRequest)
	authed.POST("/requests/:request_id/photo", photosHandler.UploadPhoto)
	authed.POST("/readers/account", readersHandler.ConnectAccount)

	// Shared
	authed.GET("/requests/:request_id", requestsHandler.GetRequest)
	authed.GET("/readers/:reader_id/reviews", reviewsHandler.ListReaderReviews)
	authed.GET("/readers/:reader_id/rating", reviewsHandler.GetReaderRating)

	// Webhook (no user auth, Stripe signature) and operator sweep
	router.POST("/api/v1/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	router.POST("/api/v1/internal/sweep", sweepHandler.Sweep)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

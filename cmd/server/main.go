package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"houseprice/internal/config"
	"houseprice/internal/form"
	"houseprice/internal/handler"
	"houseprice/internal/repository"
	"houseprice/internal/service"
	"houseprice/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Property Price Intelligence")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize the optional audit log database
	var repo *repository.PostgresRepository
	var predictionLogger service.PredictionLogger
	if cfg.PostgreSQL.Enabled {
		repo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = repo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}

		predictionLogger = repo
		log.Println("✅ Connected to PostgreSQL database")
	} else {
		log.Println("⚠️  PostgreSQL is disabled - predictions will not be recorded")
		log.Println("   Set DATABASE_URL or PG_HOST to enable the audit log")
	}

	// Initialize prediction client
	client := service.NewPredictionClient(&cfg.Prediction)
	log.Printf("✅ Prediction client initialized")
	log.Printf("   - API URL: %s", client.BaseURL())
	if cfg.Prediction.Timeout > 0 {
		log.Printf("   - Timeout: %s", cfg.Prediction.Timeout)
	}

	// Initialize services
	predictionService := service.NewPredictionService(client, predictionLogger)
	newForm := func() *form.Form {
		return form.New(predictionService)
	}
	sessions := form.NewSessionStore(cfg.Session.TTL, newForm)

	log.Println("✅ Services initialized")

	// Initialize handlers
	formHandler := handler.NewFormHandler(sessions, cfg.Session)
	predictHandler := handler.NewPredictHandler(newForm)

	tmpl, err := web.Templates()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Setup Gin router
	router := gin.Default()
	router.SetHTMLTemplate(tmpl)

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		code, status, upstream := http.StatusOK, "healthy", "healthy"
		if err := client.Health(ctx); err != nil {
			code, status, upstream = http.StatusServiceUnavailable, "degraded", err.Error()
		}

		c.JSON(code, gin.H{
			"status":             status,
			"service":            "property-price-form",
			"prediction_service": upstream,
			"audit_log":          cfg.PostgreSQL.Enabled,
			"version":            Version,
			"build_time":         BuildTime,
			"git_commit":         GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Form pages
	router.GET("/", formHandler.Show)
	router.GET("/predict", formHandler.Show)
	router.POST("/predict", formHandler.Submit)
	router.POST("/predict/reset", formHandler.Reset)

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/predict", predictHandler.Predict)
		apiV1.GET("/fields", predictHandler.Fields)

		if repo != nil {
			historyHandler := handler.NewHistoryHandler(repo, 20, 100)
			apiV1.GET("/predictions", historyHandler.Recent)
		}
	}

	// Serve static files
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1/fields", cfg.Server.Port)
	log.Printf("🌐 Web UI: http://localhost:%d/predict", cfg.Server.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"core/internal/config"
	"core/internal/handler"
	"core/internal/repository"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := newLogger(cfg.Logging)
	log.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Mobile Shopping Assistant")

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	db, err := repository.Connect(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("✅ Connected to PostgreSQL database")

	store := repository.NewPhoneStore(db)
	nameIndex := repository.NewNameIndex(db)

	// Initialize OpenAI client
	aiClient := service.NewOpenAIClient(&cfg.OpenAI, log)
	if cfg.OpenAI.Enabled {
		log.WithFields(logrus.Fields{
			"api_base":        cfg.OpenAI.APIBase,
			"chat_model":      cfg.OpenAI.ChatModel,
			"embedding_model": cfg.OpenAI.EmbeddingModel,
		}).Info("✅ OpenAI client initialized")
	} else {
		log.Warn("⚠️  OpenAI is disabled - intent parsing and summaries will not work")
		log.Warn("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize services
	intentParser := service.NewIntentParser(aiClient, log)
	resolver := service.NewEntityResolver(aiClient, nameIndex, store, cfg.Resolver.SimilarityThreshold, log)
	translator := service.NewTranslator()
	summarizer := service.NewSummarizer(aiClient, log)
	orchestrator := service.NewOrchestrator(
		intentParser,
		resolver,
		translator,
		store,
		summarizer,
		cfg.Cache.MaxEntries,
		log,
	)

	log.Info("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(orchestrator)
	catalogHandler := handler.NewCatalogHandler(store)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "mobile-shopping-assistant",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
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

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Chat endpoints
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream) // Streaming turn
		apiV1.POST("/compare", catalogHandler.Compare)

		// Catalog endpoints
		apiV1.GET("/companies", catalogHandler.Companies)
		apiV1.GET("/filters/ranges", catalogHandler.FilterRanges)
		apiV1.GET("/phones", catalogHandler.Phones)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Infof("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")
	log.Info("✅ Server stopped")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}

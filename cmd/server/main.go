package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/void-terminal/voidterm/api/handlers"
	"github.com/void-terminal/voidterm/internal/db"
	"github.com/void-terminal/voidterm/internal/logger"
	"github.com/void-terminal/voidterm/internal/repository"
	"github.com/void-terminal/voidterm/internal/server"
)

func main() {
	// Get configuration from environment
	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "data/messages.db")
	logDir := getEnv("LOG_DIR", "data/transcripts")

	// Ensure data directories exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("Failed to create transcript directory: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize repository and transcript store
	messageRepo := repository.NewMessageRepository(database)
	transcripts := logger.NewStore(logDir)
	defer transcripts.Close()

	// Initialize the relay
	hubManager := server.NewHubManager()
	relay := server.NewHandler(hubManager, messageRepo, transcripts)
	defer hubManager.Close()

	// Initialize handlers
	terminalHandler := handlers.NewTerminalHandler(relay, messageRepo)
	wsHandler := handlers.NewWebSocketHandler(relay)

	// Initialize Gin router
	r := gin.Default()

	// Enable CORS for development
	r.Use(corsMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// WebSocket attach endpoint
	r.GET("/ws/:terminalId", wsHandler.Attach)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/terminals", terminalHandler.List)
		api.GET("/terminals/:id/messages", terminalHandler.ListMessages)
		api.POST("/terminals/:id/messages", terminalHandler.CreateMessage)
		api.DELETE("/terminals/:id/messages", terminalHandler.DeleteMessages)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		hubManager.Close()
		transcripts.Close()
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smarthome-skill-bridge/internal/config"
	"smarthome-skill-bridge/internal/middleware"
	"smarthome-skill-bridge/pkg/server"

	"github.com/gin-gonic/gin"
)

// maxDirectiveSize bounds dev server request bodies
const maxDirectiveSize = 256 << 10

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	manager := server.NewConnectionManager(config.Load)
	if err := manager.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer manager.Cleanup()

	container, err := manager.GetContainer(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(container.Logger))

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if !manager.IsHealthy() {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":           status,
			"timestamp":        time.Now().UTC(),
			"deployment_mode":  config.GetDeploymentMode(),
			"backend":          cfg.Remote.BaseURL(),
			"protocol_version": cfg.Protocol,
			"routes":           container.Router.Routes(),
		})
	})

	router.POST("/directive",
		middleware.ContentTypeValidation(),
		middleware.RequestSizeLimit(maxDirectiveSize),
		func(c *gin.Context) {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusRequestEntityTooLarge, middleware.ErrorResponse{
					Error:     "Failed to read body",
					Message:   err.Error(),
					RequestID: c.GetString(middleware.RequestIDKey),
					Timestamp: time.Now().Format(time.RFC3339),
				})
				return
			}

			// directive failures are reported inside the event, always with 200
			event, err := container.Handle(c.Request.Context(), json.RawMessage(body))
			if err != nil {
				c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{
					Error:     "Internal server error",
					Message:   err.Error(),
					RequestID: c.GetString(middleware.RequestIDKey),
					Timestamp: time.Now().Format(time.RFC3339),
				})
				return
			}
			c.JSON(http.StatusOK, event)
		})

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	container.Logger.WithField("port", cfg.Port).Info("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	container.Logger.Info("Server exited")
}

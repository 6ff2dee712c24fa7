package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lottoplay/housie-backend/config"
	"github.com/lottoplay/housie-backend/routes"
	"github.com/lottoplay/housie-backend/services"
	"github.com/lottoplay/housie-backend/utils/logger"
)

// setupRouter initializes Gin routes and middleware
func setupRouter(cfg *config.Config, mgr *services.Manager, store services.Store) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, mgr, store)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket room channel
	r.GET("/ws/rooms/:roomId", mgr.HandleWebSocket)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("[FATAL] %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("[FATAL] %v", err)
	}
	logger.Info("✅ Database connected and migrated")

	store := services.NewGormStore(db)
	mgr := services.NewManager(store, services.NewBroadcaster())

	router := setupRouter(cfg, mgr, store)

	logger.Infof("🚀 Housie backend server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}

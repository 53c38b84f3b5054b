package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact_book/internal/config"
	"contact_book/internal/handler"
	"contact_book/internal/logger"
	"contact_book/internal/middleware"
	"contact_book/internal/repository"
	"contact_book/internal/service"
	"contact_book/internal/storage"
	"contact_book/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	if err := config.AutoMigrate(dbPool); err != nil {
		zlog.Fatal("failed to auto-migrate database", zap.Error(err))
	}

	// --- File Storage ---
	files, err := buildStorage(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize file storage", zap.Error(err))
	}

	// --- Wiring ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)

	userRepo := repository.NewUserRepository(dbPool)
	contactRepo := repository.NewContactRepository(dbPool)

	authService := service.NewAuthService(userRepo, jwtUtil, cfg.InitialAdminPhone, zlog)
	contactService := service.NewContactService(contactRepo, files, zlog)

	authHandler := handler.NewAuthHandler(authService, zlog)
	contactHandler := handler.NewContactHandler(contactService, zlog)

	// --- Setup Gin Router ---
	router := gin.New()
	router.Use(gin.Recovery())

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)

	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup)
	contactHandler.RegisterContactRoutes(apiGroup, jwtAuthMW)

	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(context.Background()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exiting")
}

func buildStorage(cfg *config.Config, zlog *zap.Logger) (storage.Storage, error) {
	if cfg.StorageBackend == config.StorageS3 {
		client, err := minio.New(cfg.S3Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
			Secure: cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		zlog.Info("using S3 storage", zap.String("endpoint", cfg.S3Endpoint), zap.String("bucket", cfg.S3Bucket))
		return storage.NewS3Storage(client, cfg.S3Bucket), nil
	}

	zlog.Info("using disk storage", zap.String("dir", cfg.UploadsDir))
	return storage.NewDiskStorage(cfg.UploadsDir)
}

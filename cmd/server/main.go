package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/naleksandarn/fermented-sausages/internal/config"
	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/handler"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
	"github.com/naleksandarn/fermented-sausages/internal/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting curetrack service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	if err := seedAdminUser(db, zapLogger); err != nil {
		zapLogger.Warn("Seed admin user warning", zap.Error(err))
	}

	// Outbox dispatcher runs for the life of the process.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	go services.Notifier.Start(dispatchCtx)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stopDispatch()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func migrate(db *gorm.DB, zapLogger *zap.Logger) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Product{},
		&entity.Batch{},
		&entity.Trolley{},
		&entity.Measurement{},
		&entity.Notification{},
	); err != nil {
		return err
	}

	// Constraints AutoMigrate cannot express. The partial unique index is
	// what keeps a trolley's baseline reading unique under concurrent
	// submissions; products are RESTRICT-protected against deletion while
	// batches still reference them.
	migrationSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_measurements_baseline
			ON measurements (trolley_id) WHERE phase = 'PRODUCTION'`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_trolley_phase
			ON measurements (trolley_id, phase)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_lot_active
			ON batches (lot_number) WHERE is_active = TRUE`,
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration warning", zap.String("sql", sql), zap.Error(err))
		}
	}

	zapLogger.Info("Database migration completed")
	return nil
}

// seedAdminUser creates the initial admin account on an empty user table.
func seedAdminUser(db *gorm.DB, zapLogger *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &entity.User{
		ID:           uuid.New().String()[:32],
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	zapLogger.Info("Seeded initial admin user")
	return nil
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// SSE needs the query-param token fallback in JWTAuth.
		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			users := authorized.Group("/users")
			users.Use(middleware.RequireRole(entity.RoleAdmin))
			{
				users.GET("", h.User.List)
				users.POST("", h.User.Create)
				users.PUT("/:id", h.User.Update)
				users.DELETE("/:id", h.User.Delete)
			}

			products := authorized.Group("/products")
			{
				products.GET("", h.Product.List)
				products.GET("/:id", h.Product.Get)
				products.POST("", h.Product.Create)
				products.PUT("/:id", h.Product.Update)
				products.DELETE("/:id", h.Product.Delete)
			}

			batches := authorized.Group("/batches")
			{
				batches.GET("", h.Batch.Dashboard)
				batches.GET("/archived", h.Batch.Archived)
				batches.GET("/:id", h.Batch.Get)
				batches.POST("", h.Batch.Create)
				batches.PUT("/:id/move", h.Batch.Move)
				batches.DELETE("/:id", h.Batch.Delete)
				batches.GET("/:id/trolleys", h.Batch.TrolleyDetails)
				batches.GET("/:id/history", h.Batch.MeasurementHistory)
			}

			trolleys := authorized.Group("/trolleys")
			{
				trolleys.POST("", h.Trolley.Add)
				trolleys.GET("/:id", h.Trolley.Get)
				trolleys.DELETE("/:id", h.Trolley.Delete)
				trolleys.GET("/:id/measurements", h.Measurement.History)
			}

			measurements := authorized.Group("/measurements")
			{
				measurements.POST("", h.Measurement.Record)
				measurements.PUT("/:id", h.Measurement.Update)
				measurements.DELETE("/:id", h.Measurement.Delete)
			}

			packaging := authorized.Group("/packaging")
			{
				packaging.GET("/batches", h.Packaging.Batches)
				packaging.GET("/batches/:id/trolleys", h.Packaging.Unpacked)
				packaging.GET("/lookup", h.Packaging.Lookup)
				packaging.POST("/pack", h.Packaging.Pack)
			}

			analytics := authorized.Group("/analytics")
			{
				analytics.GET("", h.Analytics.Summary)
				analytics.GET("/export", h.Analytics.Export)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PUT("/read", h.Notification.MarkRead)
			}
		}
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seatline/api/routes"
	"seatline/internal/notifications"
	"seatline/internal/payments"
	"seatline/internal/seatmaps"
	"seatline/internal/shared/config"
	"seatline/internal/shared/database"
	"seatline/internal/shared/middleware"
	"seatline/pkg/logger"
	"seatline/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)
	// Logger picks its handler from the gin mode
	appLogger = logger.New()
	logger.SetDefault(appLogger)

	// Prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if db.MongoDB != nil {
		if err := seatmaps.EnsureIndexes(ctx, db.MongoDB.Collection(cfg.Mongo.Collection)); err != nil {
			appLogger.Error("failed to create seat map indexes", slog.Any("error", err))
			os.Exit(1)
		}
	}

	gateway, err := payments.NewGateway(cfg.Payment)
	if err != nil {
		appLogger.Error("failed to initialize payment gateway", slog.Any("error", err))
		os.Exit(1)
	}

	publisher, err := notifications.NewPublisher(cfg.Events)
	if err != nil {
		appLogger.Error("Failed to initialize event publisher", slog.Any("error", err))
		appLogger.Info("Continuing without event publishing - booking events will be dropped")
		publisher = notifications.NoopPublisher{}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing event publisher", slog.Any("error", err))
		}
	}()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, cfg.RateLimit)
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
			slog.Int("booking_requests", cfg.RateLimit.BookingRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	appRouter := routes.NewRouter(cfg, db, gateway, publisher)
	router := setupRouter(appRouter, rateLimiter, cfg.RequestTimeout)

	reaper := appRouter.Reaper()
	reaper.Start(ctx)
	defer reaper.Stop()

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("payment_provider", gateway.Provider()),
			slog.String("seat_map_store", cfg.Booking.SeatMapStore),
			slog.String("event_broker", cfg.Events.Broker),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, requestTimeout time.Duration) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery(), middleware.RequestTimeout(requestTimeout))

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)
	return engine
}

package routes

import (
	"net/http"
	"time"

	"seatline/internal/auth"
	"seatline/internal/authz"
	"seatline/internal/bookings"
	"seatline/internal/events"
	"seatline/internal/notifications"
	"seatline/internal/payments"
	"seatline/internal/reservations"
	"seatline/internal/seatmaps"
	"seatline/internal/shared/config"
	"seatline/internal/shared/database"
	"seatline/internal/users"
	"seatline/pkg/cache"
	"seatline/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	gateway   payments.Gateway
	publisher notifications.Publisher
	guard     *authz.Guard
	cache     cache.Service

	userService  users.Service
	eventService events.Service
	seatMaps     seatmaps.Service
	engine       *reservations.Engine
	reaper       *reservations.Reaper
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, gateway payments.Gateway, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		gateway:   gateway,
		publisher: publisher,
		guard:     authz.NewGuard(cfg.Booking.AllowGuests),
		cache:     cache.NewService(db.Redis),
	}
}

// SetupRoutes wires every module and registers its routes.
// Order matters: later modules depend on services built by earlier ones.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupSeatMapRoutes(api)
		r.setupReservationRoutes(api)

		api.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":          "operational",
				"api_version":     r.config.APIVersion,
				"payment":         r.gateway.Provider(),
				"seat_map_store":  r.config.Booking.SeatMapStore,
				"event_broker":    r.config.Events.Broker,
				"guests_can_book": r.config.Booking.AllowGuests,
				"timestamp":       time.Now(),
			})
		})
	}
}

// Reaper returns the pending booking reaper, available after SetupRoutes
func (r *Router) Reaper() *reservations.Reaper {
	return r.reaper
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		body := gin.H{
			"timestamp": time.Now(),
			"service":   "seatline-backend",
		}
		if r.reaper != nil {
			body["reaper"] = r.reaper.Status()
		}

		if err := r.db.HealthCheck(ctx); err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		if err := r.publisher.HealthCheck(ctx); err != nil {
			// Booking still works without the broker; events are dropped with a warning
			body["status"] = "degraded"
			body["broker_error"] = err.Error()
			c.JSON(http.StatusOK, body)
			return
		}

		body["status"] = "healthy"
		c.JSON(http.StatusOK, body)
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	userRepo := users.NewRepository(r.db.PostgreSQL)
	r.userService = users.NewService(userRepo)

	authService := auth.NewService(userRepo, r.config.JWT)
	authController := auth.NewController(authService, r.userService)
	auth.SetupAuthRoutes(rg, authController, r.config.JWT.Secret)
}

func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.PostgreSQL)
	r.eventService = events.NewService(eventRepo, r.guard, r.userService, r.cache)

	eventController := events.NewController(r.eventService)
	events.SetupEventRoutes(rg, eventController, r.config.JWT.Secret)
}

func (r *Router) setupSeatMapRoutes(rg *gin.RouterGroup) {
	var repo seatmaps.Repository
	if r.config.Booking.SeatMapStore == "mongo" {
		repo = seatmaps.NewMongoRepository(r.db.MongoDB.Collection(r.config.Mongo.Collection), r.config.Booking.CommitRetries)
	} else {
		repo = seatmaps.NewRepository(r.db.PostgreSQL, r.config.Booking.CommitRetries)
	}
	r.seatMaps = seatmaps.NewService(repo, r.eventService, r.guard, r.cache, r.config.Redis.SeatMapTTL)

	seatMapController := seatmaps.NewController(r.seatMaps)
	seatmaps.SetupSeatMapRoutes(rg, seatMapController, r.config.JWT.Secret)
}

func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	bookingService := bookings.NewService(bookings.NewRepository(r.db.PostgreSQL))
	r.engine = reservations.NewEngine(
		r.seatMaps,
		bookingService,
		r.eventService,
		r.gateway,
		r.publisher,
		r.guard,
		reservations.Config{
			Currency:       r.config.Payment.Currency,
			GatewayTimeout: r.config.Payment.Timeout,
		},
	)
	r.reaper = reservations.NewReaper(r.engine, &reservations.ReaperConfig{
		Interval:    r.config.Booking.ReaperInterval,
		PendingTTL:  r.config.Booking.PendingTTL,
		CommitGrace: r.config.Booking.CommitGrace,
		BatchSize:   r.config.Booking.ReaperBatch,
	})

	reservationController := reservations.NewController(r.engine)
	reservations.SetupReservationRoutes(rg, reservationController, r.config.JWT.Secret)
}

package reservations

import (
	"seatline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(router *gin.RouterGroup, controller Controller, jwtSecret string) {
	// Guests may book; a bearer token, when present, ties the booking to the user
	router.POST("/events/:id/bookings", middleware.OptionalAuth(jwtSecret), controller.InitiateBooking) // POST /api/v1/events/:id/bookings

	bookingRoutes := router.Group("/bookings")
	{
		bookingRoutes.GET("/me", middleware.JWTAuth(jwtSecret), controller.ListMyBookings) // GET /api/v1/bookings/me

		bookingRoutes.Use(middleware.OptionalAuth(jwtSecret))
		bookingRoutes.GET("/:id", controller.GetBooking)              // GET /api/v1/bookings/:id
		bookingRoutes.POST("/:id/confirm", controller.ConfirmBooking) // POST /api/v1/bookings/:id/confirm
		bookingRoutes.POST("/:id/cancel", controller.CancelBooking)   // POST /api/v1/bookings/:id/cancel
	}

	admin := router.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtSecret), middleware.RequireAdmin())
	{
		admin.GET("/bookings/reconciliation", controller.ListReconciliation) // GET /api/v1/admin/bookings/reconciliation
	}
}

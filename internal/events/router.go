package events

import (
	"seatline/internal/authz"
	"seatline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, jwtSecret string) {
	// Public browsing
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.ListEvents)   // GET /api/v1/events
		publicEvents.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id
	}

	// Organizer management; ownership is checked per event by the service
	manageEvents := router.Group("/events")
	manageEvents.Use(middleware.JWTAuth(jwtSecret), middleware.RequireRoles(authz.RoleOrganizer, authz.RoleAdmin))
	{
		manageEvents.POST("", controller.CreateEvent)              // POST /api/v1/events
		manageEvents.PATCH("/:id", controller.UpdateEvent)         // PATCH /api/v1/events/:id
		manageEvents.POST("/:id/publish", controller.PublishEvent) // POST /api/v1/events/:id/publish
	}
}

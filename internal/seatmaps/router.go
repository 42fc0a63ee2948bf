package seatmaps

import (
	"seatline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatMapRoutes(router *gin.RouterGroup, controller Controller, jwtSecret string) {
	seatMaps := router.Group("/events/:id/seatmap")
	{
		// Read-only snapshot for buyers
		seatMaps.GET("", controller.GetSeatMap) // GET /api/v1/events/:id/seatmap

		// Layout authoring; owner or admin is checked by the service
		seatMaps.PUT("", middleware.JWTAuth(jwtSecret), controller.SaveSeatMap)        // PUT /api/v1/events/:id/seatmap
		seatMaps.POST("/grid", middleware.JWTAuth(jwtSecret), controller.GenerateGrid) // POST /api/v1/events/:id/seatmap/grid
	}
}

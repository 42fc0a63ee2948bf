package auth

import (
	"seatline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all auth routes
func SetupAuthRoutes(router *gin.RouterGroup, controller *Controller, jwtSecret string) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", controller.Register) // POST /api/v1/auth/register
		auth.POST("/login", controller.Login)       // POST /api/v1/auth/login

		auth.GET("/me", middleware.JWTAuth(jwtSecret), controller.GetMe) // GET /api/v1/auth/me
	}
}

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"seatline/internal/authz"
	"seatline/internal/shared/utils/response"
	"seatline/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// JWTAuth rejects requests without a valid access token
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		claims, msg := parseAccessToken(authHeader, secret)
		if claims == nil {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), msg, c.ClientIP())
			response.RespondJSON(c, "error", http.StatusUnauthorized, msg, nil, nil)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the caller identity when a valid token is present and
// treats the request as a guest otherwise
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if claims, _ := parseAccessToken(authHeader, secret); claims != nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func parseAccessToken(authHeader, secret string) (jwt.MapClaims, string) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "authorization header format must be Bearer {token}"
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, "invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "invalid token claims"
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, "invalid token type"
	}
	if _, ok := claims["user_id"].(string); !ok {
		return nil, "token has no subject"
	}
	return claims, ""
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	c.Set(ContextUserID, claims["user_id"])
	c.Set(ContextUserEmail, claims["email"])
	c.Set(ContextUserRole, claims["role"])
}

// Identity returns the caller identity, or a guest when none was authenticated
func Identity(c *gin.Context) authz.Identity {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return authz.Guest()
	}
	return authz.Identity{
		SubjectID: userID,
		Role:      authz.Role(c.GetString(ContextUserRole)),
	}
}

// RequireRoles checks the caller has one of the roles. Use after JWTAuth.
func RequireRoles(requiredRoles ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := Identity(c)
		if caller.IsGuest() {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if caller.Role == role {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// RequireAdmin requires the admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(authz.RoleAdmin)
}

// RequestLogger logs each request after it is served
func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}

// RequestTimeout bounds the request context so store and gateway calls made
// by handlers give up once d has passed
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

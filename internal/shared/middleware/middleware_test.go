package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seatline/internal/authz"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func accessClaims(userID string, role authz.Role) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"email":   userID + "@example.com",
		"role":    string(role),
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		id := Identity(c)
		c.JSON(http.StatusOK, gin.H{"subject": id.SubjectID, "role": string(id.Role)})
	})
	r.GET("/whoami", handlers...)
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newEngine(JWTAuth(testSecret))

	t.Run("valid access token", func(t *testing.T) {
		w := doRequest(r, signToken(t, accessClaims("u1", authz.RoleUser), testSecret))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"subject":"u1"`)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := doRequest(r, signToken(t, accessClaims("u1", authz.RoleUser), "other"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token type", func(t *testing.T) {
		claims := accessClaims("u1", authz.RoleUser)
		claims["type"] = "refresh"
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, signToken(t, claims, testSecret)).Code)
	})

	t.Run("expired", func(t *testing.T) {
		claims := accessClaims("u1", authz.RoleUser)
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, signToken(t, claims, testSecret)).Code)
	})
}

func TestOptionalAuth_GuestWhenTokenInvalid(t *testing.T) {
	r := newEngine(OptionalAuth(testSecret))

	w := doRequest(r, "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subject":""`)

	w = doRequest(r, signToken(t, accessClaims("u2", authz.RoleOrganizer), testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"organizer"`)
}

func TestRequireRoles(t *testing.T) {
	r := newEngine(JWTAuth(testSecret), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, doRequest(r, signToken(t, accessClaims("u1", authz.RoleUser), testSecret)).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, signToken(t, accessClaims("root", authz.RoleAdmin), testSecret)).Code)
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("sets a deadline on the request context", func(t *testing.T) {
		r := gin.New()
		r.GET("/slow", RequestTimeout(50*time.Millisecond), func(c *gin.Context) {
			deadline, ok := c.Request.Context().Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)

			<-c.Request.Context().Done()
			assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
			c.Status(http.StatusGatewayTimeout)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("zero leaves the context alone", func(t *testing.T) {
		r := gin.New()
		r.GET("/open", RequestTimeout(0), func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			assert.False(t, ok)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

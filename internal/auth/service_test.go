package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"seatline/internal/authz"
	"seatline/internal/shared/apperrors"
	"seatline/internal/shared/config"
	"seatline/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]users.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[uuid.UUID]users.User{}}
}

func (m *memoryUsers) Create(_ context.Context, u *users.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (m *memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id.String())
	}
	return &u, nil
}

func (m *memoryUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memoryUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperrors.NotFound("user", id.String())
	}
	u.LastLoginAt = &at
	m.users[id] = u
	return nil
}

var testJWT = config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour}

func newTestService(repo users.Repository) *service {
	svc := NewService(repo, testJWT).(*service)
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func attendee(email string) *RegisterRequest {
	return &RegisterRequest{Email: email, Password: "secret123", FirstName: "Ravi", LastName: "Kumar"}
}

func TestRegister(t *testing.T) {
	repo := newMemoryUsers()
	svc := newTestService(repo)

	resp, err := svc.Register(context.Background(), attendee(" Ravi@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", resp.User.Email)
	assert.Equal(t, authz.RoleUser, resp.User.Role)
	assert.Equal(t, users.ProfileAttendee, resp.User.Profile.Kind())
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	stored, err := repo.FindByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "access", claims.Type)

	_, err = svc.Register(context.Background(), attendee("ravi@example.com"))
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegister_Profiles(t *testing.T) {
	svc := newTestService(newMemoryUsers())

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "asha@example.com", Password: "secret123", Role: "organizer",
		FullName: "Asha Rao", BusinessName: "Rao Events",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User.Profile.Organizer)
	assert.Equal(t, users.VerificationPending, resp.User.Profile.Organizer.VerificationStatus)
	assert.False(t, resp.User.IsVerifiedOrganizer())

	_, err = svc.Register(context.Background(), &RegisterRequest{
		Email: "org2@example.com", Password: "secret123", Role: "organizer", FirstName: "No", LastName: "Business",
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Register(context.Background(), &RegisterRequest{Email: "root@example.com", Password: "secret123", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogin(t *testing.T) {
	repo := newMemoryUsers()
	svc := newTestService(repo)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	registered, err := svc.Register(context.Background(), attendee("ravi@example.com"))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "ravi@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: "RAVI@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.LastLoginAt)
	assert.Equal(t, fixed, *resp.User.LastLoginAt)

	stored, _ := repo.FindByID(context.Background(), registered.User.ID)
	assert.Equal(t, fixed, *stored.LastLoginAt)
}

func TestLogin_InactiveUserRejected(t *testing.T) {
	repo := newMemoryUsers()
	svc := newTestService(repo)
	registered, err := svc.Register(context.Background(), attendee("ravi@example.com"))
	require.NoError(t, err)

	u := repo.users[registered.User.ID]
	u.IsActive = false
	repo.users[u.ID] = u

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "ravi@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserInactive)
	assert.Nil(t, repo.users[u.ID].LastLoginAt)
}

func TestValidateToken_RejectsForeignSecret(t *testing.T) {
	svc := newTestService(newMemoryUsers())
	resp, err := svc.Register(context.Background(), attendee("ravi@example.com"))
	require.NoError(t, err)

	other := NewService(newMemoryUsers(), config.JWTConfig{Secret: "other", ExpiresIn: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoutes_RegisterThenMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newMemoryUsers()
	svc := newTestService(repo)
	r := gin.New()
	SetupAuthRoutes(r.Group("/api/v1"), NewController(svc, users.NewService(repo)), testJWT.Secret)

	body := `{"email":"ravi@example.com","password":"secret123","first_name":"Ravi","last_name":"Kumar"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Data.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ravi@example.com"`)
	assert.NotContains(t, w.Body.String(), "secret123")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ravi@example.com","password":"nope-nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

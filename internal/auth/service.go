package auth

import (
	"context"
	"strings"
	"time"

	"seatline/internal/authz"
	"seatline/internal/shared/apperrors"
	"seatline/internal/shared/config"
	"seatline/internal/users"
	"seatline/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

type service struct {
	repo       users.Repository
	config     config.JWTConfig
	bcryptCost int
	now        func() time.Time
	logger     *logger.Logger
}

func NewService(repo users.Repository, cfg config.JWTConfig) Service {
	return &service{
		repo:       repo,
		config:     cfg,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.GetDefault(),
	}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	role, ok := users.RoleForSignup(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}
	profile, err := buildProfile(role, req)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
		Profile:  profile,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(ctx, user, "register")
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return s.issue(ctx, user, "password")
}

func (s *service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Type != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) issue(ctx context.Context, user *users.User, method string) (*AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	s.logger.LogAuthSuccess(ctx, user.ID.String(), method)
	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.ExpiresIn.Seconds()),
	}, nil
}

func (s *service) generateAccessToken(user *users.User) (string, error) {
	now := s.now()
	claims := JWTClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.ExpiresIn)),
			Issuer:    "seatline",
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func buildProfile(role authz.Role, req *RegisterRequest) (users.Profile, error) {
	if role == authz.RoleOrganizer {
		return users.NewOrganizerProfile(req.FullName, req.BusinessName)
	}
	return users.NewAttendeeProfile(req.FirstName, req.LastName)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package auth

import (
	"errors"
	"net/http"

	"seatline/internal/shared/middleware"
	"seatline/internal/shared/utils/response"
	"seatline/internal/users"
	"seatline/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	users     users.Service
	validator *validator.Validate
}

func NewController(service Service, userService users.Service) *Controller {
	return &Controller{
		service:   service,
		users:     userService,
		validator: validator.New(),
	}
}

func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyExists):
			response.RespondJSON(ctx, "error", http.StatusConflict, "User with this email already exists", nil, nil)
		case errors.Is(err, ErrInvalidRole):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Role must be user or organizer", nil, nil)
		default:
			response.RespondError(ctx, err, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "User registered successfully", resp, nil)
}

func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			logger.GetDefault().LogAuthFailure(ctx.Request.Context(), "invalid credentials", ctx.ClientIP())
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid email or password", nil, nil)
		case errors.Is(err, ErrUserInactive):
			logger.GetDefault().LogAuthFailure(ctx.Request.Context(), "inactive user", ctx.ClientIP())
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Account is disabled", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to login", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Login successful", resp, nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	caller := middleware.Identity(ctx)
	userID, err := uuid.Parse(caller.SubjectID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	user, err := c.users.GetByID(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "User data retrieved successfully", user, nil)
}

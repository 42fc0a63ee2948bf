package events

import (
	"net/http"

	"seatline/internal/shared/middleware"
	"seatline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateEvent(c *gin.Context)
	GetEvent(c *gin.Context)
	UpdateEvent(c *gin.Context)
	PublishEvent(c *gin.Context)
	ListEvents(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Event created successfully", event, nil)
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	event, err := ctrl.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

func (ctrl *controller) UpdateEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	event, err := ctrl.service.UpdateEvent(c.Request.Context(), middleware.Identity(c), id, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event updated successfully", event, nil)
}

func (ctrl *controller) PublishEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	event, err := ctrl.service.PublishEvent(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event published", event, nil)
}

func (ctrl *controller) ListEvents(c *gin.Context) {
	var query ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	events, err := ctrl.service.ListPublished(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

func parseEventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID format", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

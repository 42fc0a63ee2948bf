package seatmaps

import (
	"net/http"

	"seatline/internal/shared/middleware"
	"seatline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetSeatMap(c *gin.Context)
	SaveSeatMap(c *gin.Context)
	GenerateGrid(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetSeatMap returns the snapshot, or an empty layout when none is saved
func (ctrl *controller) GetSeatMap(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	sm, err := ctrl.service.GetSeatMap(c.Request.Context(), eventID)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}

	message := "Seat map retrieved successfully"
	if !sm.Exists {
		message = "No seat map saved for this event yet"
	}
	response.RespondJSON(c, "success", http.StatusOK, message, sm, nil)
}

// SaveSeatMap answers 201 on create and 200 on replace
func (ctrl *controller) SaveSeatMap(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	var req SaveSeatMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.SaveSeatMap(c.Request.Context(), middleware.Identity(c), eventID, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	respondSaved(c, result)
}

func (ctrl *controller) GenerateGrid(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	var req GenerateGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.GenerateGrid(c.Request.Context(), middleware.Identity(c), eventID, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	respondSaved(c, result)
}

func respondSaved(c *gin.Context, result *SaveResult) {
	data := NewSeatMapResponse(result.SeatMap.EventID, result.SeatMap)
	if result.Created {
		response.RespondJSON(c, "success", http.StatusCreated, "Seat map created", data, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Seat map updated", data, nil)
}

func parseEventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID format", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

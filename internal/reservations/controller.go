package reservations

import (
	"net/http"

	"seatline/internal/bookings"
	"seatline/internal/shared/middleware"
	"seatline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	InitiateBooking(c *gin.Context)
	ConfirmBooking(c *gin.Context)
	CancelBooking(c *gin.Context)
	GetBooking(c *gin.Context)
	ListMyBookings(c *gin.Context)
	ListReconciliation(c *gin.Context)
}

type controller struct {
	engine *Engine
}

func NewController(engine *Engine) Controller {
	return &controller{engine: engine}
}

// InitiateBooking handles POST /events/:id/bookings
func (ctrl *controller) InitiateBooking(c *gin.Context) {
	eventID, ok := parseID(c, "Invalid event ID format")
	if !ok {
		return
	}
	var req InitiateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.engine.Initiate(c.Request.Context(), middleware.Identity(c), eventID, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Booking created, complete payment to confirm", result, nil)
}

// ConfirmBooking handles POST /bookings/:id/confirm
func (ctrl *controller) ConfirmBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "Invalid booking ID format")
	if !ok {
		return
	}
	var req ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.engine.Confirm(c.Request.Context(), middleware.Identity(c), bookingID, req)
	if err != nil {
		var data interface{}
		if result != nil {
			data = result
		}
		response.RespondError(c, err, data)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Booking confirmed", result, nil)
}

// CancelBooking handles POST /bookings/:id/cancel
func (ctrl *controller) CancelBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "Invalid booking ID format")
	if !ok {
		return
	}

	booking, err := ctrl.engine.Cancel(c.Request.Context(), middleware.Identity(c), bookingID)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Booking cancelled", booking, nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "Invalid booking ID format")
	if !ok {
		return
	}

	booking, err := ctrl.engine.Get(c.Request.Context(), middleware.Identity(c), bookingID)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (ctrl *controller) ListMyBookings(c *gin.Context) {
	var query bookings.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	page, err := ctrl.engine.ListMine(c.Request.Context(), middleware.Identity(c), query)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", page, nil)
}

// ListReconciliation handles GET /admin/bookings/reconciliation
func (ctrl *controller) ListReconciliation(c *gin.Context) {
	var query bookings.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	page, err := ctrl.engine.ListReconciliation(c.Request.Context(), middleware.Identity(c), query)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Bookings needing reconciliation", page, nil)
}

func parseID(c *gin.Context, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, message, nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

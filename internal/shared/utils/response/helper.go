package response

import (
	"seatline/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes err using the status code of its taxonomy type.
// data is optional and is attached for partial outcomes such as seat conflicts.
func RespondError(c *gin.Context, err error, data interface{}) {
	code := apperrors.HTTPStatus(err)
	var details interface{}
	if sc, ok := apperrors.AsSeatConflict(err); ok {
		details = gin.H{"conflicting_seats": sc.Seats, "booking_id": sc.BookingID}
	} else if code < 500 {
		details = err.Error()
	}
	RespondJSON(c, "error", code, apperrors.UserMessage(err), data, details)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/joshua-takyi/gylounge/internal/services"
)

// CreateBooking handles the booking form. The outcome is carried back to the
// page as ?booking=<status>#booking.
func CreateBooking(rs *services.ReservationService, redirectPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ReservationInput
		// A body that does not bind leaves the input empty, which Reserve
		// reports as invalid.
		_ = c.ShouldBind(&in)

		out := rs.Reserve(c.Request.Context(), in)

		if wantsJSON(c) {
			code := http.StatusOK
			switch out.Status {
			case services.BookingSuccess, services.BookingEmailWarning:
				code = http.StatusCreated
			case services.BookingInvalid:
				code = http.StatusBadRequest
			case services.BookingMembershipRequired:
				code = http.StatusForbidden
			case services.BookingSlotUnavailable:
				code = http.StatusConflict
			case services.BookingError:
				code = http.StatusInternalServerError
			}
			resp := models.SuccessResponse(out, string(out.Status))
			resp.Success = code < http.StatusBadRequest
			c.JSON(code, withRequestID(c, resp))
			return
		}

		c.Redirect(http.StatusSeeOther, statusURL(redirectPath, "booking", string(out.Status)))
	}
}

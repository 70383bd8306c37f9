package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/joshua-takyi/gylounge/internal/services"
)

func ListSlotBookings(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slotID := c.Param("id")
		if slotID == "" {
			c.JSON(http.StatusBadRequest, withRequestID(c, models.ErrorResponse("slot id is required")))
			return
		}

		bookings, err := cs.SlotBookings(c.Request.Context(), slotID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, withRequestID(c, models.ListResponse(bookings)))
	}
}

// Reconcile runs one sweep. Query: older_than (duration, default from
// config) and repair (bool).
func Reconcile(rc *services.Reconciler, defaultOlderThan time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		olderThan := defaultOlderThan
		if raw := c.Query("older_than"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 {
				c.JSON(http.StatusBadRequest, withRequestID(c, models.ErrorResponse("older_than must be a positive duration")))
				return
			}
			olderThan = d
		}
		repair := c.Query("repair") == "true"

		report, err := rc.Sweep(c.Request.Context(), olderThan, repair)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, withRequestID(c, models.SuccessResponse(report, "sweep finished")))
	}
}

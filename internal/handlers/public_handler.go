package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/joshua-takyi/gylounge/internal/middleware"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/joshua-takyi/gylounge/internal/services"
)

func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": service,
		})
	}
}

// CSRFToken hands out the token a form must post back. It only works behind
// middleware.CSRF; without it the token is empty.
func CSRFToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := csrf.Token(c.Request)
		if token == "" {
			c.JSON(http.StatusNotFound, withRequestID(c, models.ErrorResponse("csrf protection is disabled")))
			return
		}
		c.Header("X-CSRF-Token", token)
		c.JSON(http.StatusOK, withRequestID(c, models.SuccessResponse(gin.H{
			"token":      token,
			"field_name": middleware.CSRFFieldName,
		}, "")))
	}
}

// Feedback turns the status codes of a redirect back into display messages.
func Feedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, withRequestID(c, models.SuccessResponse(gin.H{
			"register": services.ResolveRegisterFeedback(c.Query("register"), c.Query("reference")),
			"booking":  services.ResolveBookingFeedback(c.Query("booking")),
		}, "")))
	}
}

func BookingTarget(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := cs.NextBookingTarget(c.Request.Context())
		if err != nil {
			if models.IsNotFound(err) {
				c.JSON(http.StatusNotFound, withRequestID(c, models.ErrorResponse("no open slots")))
				return
			}
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, withRequestID(c, models.SuccessResponse(target, "")))
	}
}

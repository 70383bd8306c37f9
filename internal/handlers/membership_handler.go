package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/joshua-takyi/gylounge/internal/services"
)

// RegisterMember handles the registration form and redirects to
// ?register=<status>[&reference=...]#register.
func RegisterMember(ms *services.MembershipService, redirectPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.RegistrationInput
		_ = c.ShouldBind(&in)

		out := ms.Register(c.Request.Context(), in)

		if wantsJSON(c) {
			code := http.StatusOK
			switch out.Status {
			case services.RegisterSuccess, services.RegisterSaved:
				code = http.StatusCreated
			case services.RegisterInvalid:
				code = http.StatusBadRequest
			case services.RegisterAlreadyActive:
				code = http.StatusConflict
			case services.RegisterError:
				code = http.StatusInternalServerError
			}
			resp := models.SuccessResponse(out, string(out.Status))
			resp.Success = code < http.StatusBadRequest
			c.JSON(code, withRequestID(c, resp))
			return
		}

		c.Redirect(http.StatusSeeOther, statusURL(redirectPath, "register", string(out.Status),
			[2]string{"reference", out.Reference}))
	}
}

// ActivateMember marks a pending member active after their transfer has been
// matched. Admin only.
func ActivateMember(ms *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, withRequestID(c, models.ErrorResponse("email is required")))
			return
		}

		status := ms.Activate(c.Request.Context(), req.Email)
		switch status {
		case services.ActivateSuccess, services.ActivateEmailWarning:
			c.JSON(http.StatusOK, withRequestID(c, models.SuccessResponse(gin.H{"status": status}, "Member activated")))
		case services.ActivateAlreadyActive:
			c.JSON(http.StatusConflict, withRequestID(c, models.ErrorResponse(string(status))))
		case services.ActivateNotFound:
			c.JSON(http.StatusNotFound, withRequestID(c, models.ErrorResponse(string(status))))
		case services.ActivateInvalid:
			c.JSON(http.StatusBadRequest, withRequestID(c, models.ErrorResponse(string(status))))
		default:
			c.JSON(http.StatusInternalServerError, withRequestID(c, models.ErrorResponse("Internal server error")))
		}
	}
}

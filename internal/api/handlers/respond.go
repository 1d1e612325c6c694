package handlers

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondServiceError maps a service error to an HTTP response. Unknown
// errors become 500 with a generic body.
func respondServiceError(c *gin.Context, err error) {
	var busy *services.DeliveryBoyBusyError
	var conflict *services.StateConflictError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		fail(c, http.StatusNotFound, "not found")
	// Inactive delivery boys read as absent.
	case errors.Is(err, services.ErrDeliveryBoyInactive):
		fail(c, http.StatusNotFound, services.ErrDeliveryBoyInactive.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrDonorBanned):
		fail(c, http.StatusForbidden, services.ErrDonorBanned.Error())
	case errors.Is(err, services.ErrAlreadyExists),
		errors.Is(err, services.ErrRequestNotReady):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &busy), errors.As(err, &conflict):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

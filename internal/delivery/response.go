package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/Sarbjeetmaan/backend/internal/middleware"
	"github.com/Sarbjeetmaan/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Response = response.Response

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response.Success(c, statusCode, message, data)
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	response.Fail(c, statusCode, message)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Upstream and storage details stay in the logs.
func respondError(c *gin.Context, log *logrus.Logger, action string, err error) {
	statusCode := mapErrorToStatus(err)
	switch statusCode {
	case http.StatusBadGateway:
		log.Errorf("Failed to %s: %v", action, err)
		ErrorResponse(c, statusCode, "Failed to "+action+": payment gateway error")
	case http.StatusInternalServerError:
		log.Errorf("Failed to %s: %v", action, err)
		ErrorResponse(c, statusCode, "Failed to "+action+": internal server error")
	default:
		log.Warnf("Failed to %s: %v", action, err)
		ErrorResponse(c, statusCode, "Failed to "+action+": "+err.Error())
	}
}

func callerOrAbort(c *gin.Context, log *logrus.Logger) (domain.Identity, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		log.Error("Caller identity is missing from request context")
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return domain.Identity{}, false
	}
	return caller, true
}

// pageParams reads limit/offset query parameters; bad values fall back to the use case defaults.
func pageParams(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		limit = 0
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}
	return limit, offset
}

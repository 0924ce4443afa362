package response

import (
	"errors"
	"net/http"

	"anoa.com/droneanalytics/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextUserIDKey is the gin context key the auth middleware stores the caller under.
const ContextUserIDKey = "user_id"

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userIDStr, ok := raw.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	body := gin.H{"success": false}

	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		body["error"] = appErr.Message
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
	case code == http.StatusInternalServerError:
		body["error"] = "Internal server error"
	default:
		body["error"] = err.Error()
	}

	// Log internal errors
	if code == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("internal error")
	}

	c.JSON(code, body)
}

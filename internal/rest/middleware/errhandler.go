package middleware

import (
	"encoding/json"
	"strings"

	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

const jsonDetailsPrefix = "__json__:"

// ErrorHandler converts errors attached to the gin context into the
// standard error response. Hints become the display message; reportable
// details become the structured details payload.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		resp := ierr.ErrorResponse{
			Success: false,
			Error: ierr.ErrorDetail{
				Display:       displayMessage(err),
				InternalError: err.Error(),
				Details:       reportableDetails(err),
			},
		}

		if status >= 500 {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"status", status,
				"error", err)
		}

		c.JSON(status, resp)
	}
}

func displayMessage(err error) string {
	hints := errors.GetAllHints(err)
	if len(hints) > 0 {
		return strings.Join(hints, "; ")
	}
	return "An error occurred"
}

func reportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, detail := range payload.SafeDetails {
			if !strings.HasPrefix(detail, jsonDetailsPrefix) {
				continue
			}
			var decoded map[string]any
			if json.Unmarshal([]byte(strings.TrimPrefix(detail, jsonDetailsPrefix)), &decoded) != nil {
				continue
			}
			for k, v := range decoded {
				details[k] = v
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "speechbench/internal/api/errors"
	"speechbench/internal/app/engine"
)

// ErrorHandler recovers panics into a JSON APIError so a misbehaving engine
// or handler never kills the relay process.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString("request_id")

		var apiErr *apierrors.APIError

		switch err := recovered.(type) {
		case *apierrors.APIError:
			apiErr = err
		case error:
			logger.Error("internal server error",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			apiErr = apierrors.NewInternalError("internal server error")
		default:
			logger.Error("unknown panic",
				zap.String("request_id", requestID),
				zap.Any("recovered", recovered),
			)
			apiErr = apierrors.NewInternalError("internal server error")
		}

		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes an error as a JSON response with the mapped status.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		var engErr *engine.Error
		if errors.As(err, &engErr) {
			apiErr = apierrors.FromEngineError(engErr)
		} else {
			apiErr = apierrors.NewInternalError(err.Error())
		}
	}

	apiErr.RequestID = c.GetString("request_id")
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}

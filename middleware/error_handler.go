package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/banking/credit-scoring-engine/errors"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error as a JSON
// ErrorResponse. Handlers must not write a body after attaching an error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		ginErr := c.Errors.Last()
		err := ginErr.Err

		var appError *apperrors.AppError
		if errors.As(err, &appError) {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			response := types.ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    strconv.Itoa(statusCode),
			}
			// Details are only exposed for client-side errors or in debug mode
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == apperrors.ValidationError ||
				appError.Type == apperrors.NotFoundError) {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		if ginErr.Type == gin.ErrorTypeBind || ginErr.Type == gin.ErrorTypePublic {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request error")
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Type:    string(apperrors.ValidationError),
				Message: err.Error(),
				Code:    strconv.Itoa(http.StatusBadRequest),
			})
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
		response := types.ErrorResponse{
			Type:    string(apperrors.ServerError),
			Message: "Internal Server Error",
			Code:    strconv.Itoa(http.StatusInternalServerError),
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}

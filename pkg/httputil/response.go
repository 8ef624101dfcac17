package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/akulbansal1/carelink/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response with the created record
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps an error from the service layer onto an HTTP
// status. Validation failures carry their field map so the client can
// annotate the form; remote failures surface the upstream status.
func RespondWithError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		remoteErr     *apperrors.RemoteError
		appErr        *apperrors.AppError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error: &Error{
				Code:    http.StatusUnprocessableEntity,
				Message: "validation failed",
				Fields:  validationErr.Fields,
			},
		})
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, Response{
			Success: false,
			Error: &Error{
				Code:    remoteErr.Status,
				Message: remoteErr.Message,
			},
		})
	case errors.Is(err, apperrors.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error: &Error{
				Code:    http.StatusUnauthorized,
				Message: "authentication required",
			},
		})
	case errors.As(err, &appErr):
		status := statusForCode(appErr.Code)
		c.JSON(status, Response{
			Success: false,
			Error: &Error{
				Code:    status,
				Message: appErr.Message,
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error: &Error{
				Code:    http.StatusInternalServerError,
				Message: "internal server error",
			},
		})
	}
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/banterhq/cubby/internal/service"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error sends a JSON error response.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// errorJSON is an alias for Error (used by some handlers).
var errorJSON = Error

// successJSON sends a JSON success response with a data envelope.
func successJSON(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, map[string]interface{}{"data": data})
}

// mapServiceError translates a service-layer error into an HTTP response.
// The code and message come from the ServiceError; anything that is not one
// reads as a plain 500 so internals never leak to the client.
func mapServiceError(c echo.Context, err error) error {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		return Error(c, http.StatusInternalServerError, "UNKNOWN", "internal server error")
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(svcErr.Err, service.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(svcErr.Err, service.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(svcErr.Err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(svcErr.Err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(svcErr.Err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(svcErr.Err, service.ErrUnsupported):
		status = http.StatusUnsupportedMediaType
	}
	return Error(c, status, svcErr.Code, svcErr.Message)
}

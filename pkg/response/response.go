package response

import (
	"errors"

	"reqtrack/pkg/apperr"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ErrorKind  string      `json:"error_kind,omitempty"` // taxonomy kind, stable across message changes
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a service error onto the envelope, exposing the taxonomy
// kind and the caller-facing message but never internal storage error text.
// Classified errors may wrap a driver cause; only Message crosses the wire.
func FromError(err error) (int, Response) {
	status := apperr.HTTPStatus(err)
	msg := "internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	return status, Response{
		Status:     "error",
		StatusCode: status,
		Error:      msg,
		ErrorKind:  string(apperr.KindOf(err)),
	}
}

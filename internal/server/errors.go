package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"billbrain/internal/capability"
	"billbrain/internal/models"
)

type requestError struct {
	Status    int
	Message   string
	Type      string
	Retryable bool
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func writeError(c echo.Context, status int, message, errType string, retryable bool) error {
	var payload errorBody
	payload.Error.Message = message
	payload.Error.Type = errType
	payload.Error.Retryable = retryable
	return c.JSON(status, payload)
}

func errorHandler(err error, c echo.Context) {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Message, reqErr.Type, reqErr.Retryable)
		return
	}

	type httpError interface {
		Code() int
		Error() string
	}

	if he, ok := err.(httpError); ok {
		_ = writeError(c, he.Code(), he.Error(), "invalid_request_error", false)
		return
	}

	_ = writeError(c, http.StatusInternalServerError, "internal server error", "server_error", false)
}

// toHTTPError maps the failure taxonomy onto status codes and retryability
// hints: caller mistakes are 400 and final, upstream transport failures and
// unusable model output are 502 and worth retrying.
func toHTTPError(err error) error {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	switch {
	case errors.Is(err, models.ErrValidation):
		return requestError{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
			Type:    "invalid_request_error",
		}
	case errors.Is(err, capability.ErrUnavailable):
		return requestError{
			Status:    http.StatusBadGateway,
			Message:   err.Error(),
			Type:      "upstream_unavailable",
			Retryable: true,
		}
	case errors.Is(err, capability.ErrMalformedOutput):
		return requestError{
			Status:    http.StatusBadGateway,
			Message:   err.Error(),
			Type:      "model_output_error",
			Retryable: true,
		}
	}

	return requestError{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Type:    "server_error",
	}
}

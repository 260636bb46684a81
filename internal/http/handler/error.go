package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"motifapi/internal/http/middleware"
	applog "motifapi/internal/log"
	"motifapi/internal/service"
)

// errorPayload is the body of every non-2xx response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return s
}

// writeError writes the error envelope. message must be safe to show a client.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// serviceErrors maps service sentinels onto responses. An empty message means
// the error text is echoed, which is only done for errors describing client input.
var serviceErrors = []struct {
	target  error
	status  int
	code    string
	message string
}{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	{service.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", ""},
	{service.ErrInvalidDataset, fiber.StatusUnprocessableEntity, "INVALID_DATASET", ""},
	{service.ErrInvalidParams, fiber.StatusUnprocessableEntity, "INVALID_PARAMS", ""},
	{service.ErrNotReady, fiber.StatusConflict, "NOT_READY", ""},
	{service.ErrUnavailable, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "discovery queue is full, retry later"},
}

// writeServiceError renders err from a service call. notFound is the message
// used for service.ErrNotFound so each resource can name itself.
func writeServiceError(c *fiber.Ctx, err error, notFound string) error {
	if errors.Is(err, service.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", notFound)
	}
	for _, m := range serviceErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		return writeError(c, m.status, m.code, msg)
	}

	applog.FromContext(c.UserContext()).Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("request failed")
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

var statusCodes = map[int][2]string{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"PAYLOAD_TOO_LARGE", "request body too large"},
}

// ErrorHandler is the app-wide fiber error handler. Anything it does not
// recognise becomes a 500 with no detail.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		if cm, ok := statusCodes[status]; ok {
			return writeError(c, status, cm[0], cm[1])
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}

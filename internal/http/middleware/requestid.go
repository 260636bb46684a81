package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "motifapi/internal/log"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the fiber locals key holding the request ID.
	RequestIDLocalKey = "request_id"

	maxRequestIDLen = 128
)

// RequestID tags every request with an ID. A usable X-Request-ID from the client
// is kept, otherwise a UUID is generated. The ID is stored in locals, echoed in
// the response header and bound to the logger on the user context.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		ctx := c.UserContext()
		logger := applog.FromContext(ctx).With().Str("request_id", id).Logger()
		c.SetUserContext(logger.WithContext(ctx))

		return c.Next()
	}
}

// validRequestID accepts short printable ASCII IDs so a client cannot inject
// control characters or oversized values into logs.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

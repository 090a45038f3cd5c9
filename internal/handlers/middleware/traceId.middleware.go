package middleware

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-Id"

// TraceID assigns every request a trace id, honoring one supplied by the
// caller, and threads it through the request context for log correlation.
func (m *Middleware) TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.SetUserContext(logger.ContextWithTraceID(c.UserContext(), traceID))
		c.Set(TraceIDHeader, traceID)

		return c.Next()
	}
}

package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// LocalCorrelationID holds the request correlation identifier.
	LocalCorrelationID = "correlation_id"
	// HeaderCorrelationID is echoed on every response.
	HeaderCorrelationID = "X-Correlation-ID"
	maxCorrelationIDLen = 128
)

type correlationIDKey struct{}

var correlationKey = correlationIDKey{}

// CorrelationID ensures every request carries a correlation identifier. The
// identifier is echoed back and bound to the user context, together with a
// zerolog logger carrying it for zerolog.Ctx consumers.
func CorrelationID(base ...zerolog.Logger) fiber.Handler {
	logger := zerolog.Nop()
	if len(base) > 0 {
		logger = base[0]
	}

	return func(c *fiber.Ctx) error {
		incoming := sanitizeCorrelationID(c.Get(HeaderCorrelationID))
		if incoming == "" {
			incoming = sanitizeCorrelationID(c.Get(fiber.HeaderXRequestID))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, incoming)
		c.Set(HeaderCorrelationID, incoming)

		scoped := logger.With().Str("correlation_id", incoming).Logger()
		ctx := ContextWithCorrelation(c.UserContext(), incoming)
		c.SetUserContext(scoped.WithContext(ctx))

		return c.Next()
	}
}

func sanitizeCorrelationID(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > maxCorrelationIDLen {
		value = value[:maxCorrelationIDLen]
	}
	return value
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationKey).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(LocalCorrelationID).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// ContextWithCorrelation attaches the correlation identifier to the provided context.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(correlationID) == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey, strings.TrimSpace(correlationID))
}

package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/ecotask-api/internal/utils"
)

const rateLimitMessage = "Rate limit exceeded, please try again later."

func defaultLimitReached(c *fiber.Ctx, message string) error {
	return utils.SendFunctionError(c, fiber.StatusTooManyRequests, message)
}

// RateLimit creates a per-user rate limiter middleware instance.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	return RateLimitWith(identifier, max, window, defaultLimitReached)
}

// RateLimitWith is RateLimit with a custom body for rejected calls.
func RateLimitWith(identifier string, max int, window time.Duration, reject DenyFunc) fiber.Handler {
	if reject == nil {
		reject = defaultLimitReached
	}
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			userID := UserID(c)
			if userID == "" {
				userID = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, userID)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return reject(c, rateLimitMessage)
		},
	})
}

package middleware

import "github.com/gofiber/fiber/v2"

// Preflight answers CORS preflight requests with an empty 200 and permissive
// headers. Browser clients call the AI endpoints directly.
func Preflight() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowOrigin, allowedOrigins)
		c.Set(fiber.HeaderAccessControlAllowHeaders, allowedHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, allowedMethods)
		c.Set(fiber.HeaderAccessControlMaxAge, "86400")
		return c.Status(fiber.StatusOK).Send(nil)
	}
}

package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/ecotask-api/internal/utils"
)

const (
	// LocalUserID holds the authenticated actor identifier.
	LocalUserID = "user_id"
	// LocalUserRole holds the lower-cased role claim, if any.
	LocalUserRole = "user_role"
)

// DenyFunc writes the response for a rejected bearer token.
type DenyFunc func(c *fiber.Ctx, message string) error

func defaultDeny(c *fiber.Ctx, message string) error {
	return utils.SendError(c, fiber.StatusUnauthorized, message)
}

// JWTProtected returns a middleware that validates JWT bearer tokens.
func JWTProtected(secret string) fiber.Handler {
	return JWTProtectedWith(secret, defaultDeny)
}

// JWTProtectedWith is JWTProtected with a custom rejection body.
func JWTProtectedWith(secret string, deny DenyFunc) fiber.Handler {
	if deny == nil {
		deny = defaultDeny
	}
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return deny(c, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return deny(c, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return deny(c, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return deny(c, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return deny(c, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == "" {
			return deny(c, "token subject missing")
		}
		c.Locals(LocalUserID, userID)
		if role := extractUserRoleFromClaims(claims); role != "" {
			c.Locals(LocalUserRole, role)
		}

		return c.Next()
	}
}

// UserID returns the authenticated actor identifier, or "" when absent.
func UserID(c *fiber.Ctx) string {
	if value, ok := c.Locals(LocalUserID).(string); ok {
		return value
	}
	return ""
}

// UserRole returns the authenticated actor role, or "" when absent.
func UserRole(c *fiber.Ctx) string {
	if value, ok := c.Locals(LocalUserRole).(string); ok {
		return value
	}
	return ""
}

func extractUserIDFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id", "id"} {
		if value, ok := claims[key]; ok {
			if normalized := normalizeUserID(value); normalized != "" {
				return normalized
			}
		}
	}
	return ""
}

func normalizeUserID(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return ""
		}
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		if value, ok := claims[key]; ok {
			if role := normalizeRole(value); role != "" {
				return role
			}
		}
	}
	return ""
}

func normalizeRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				if role := strings.ToLower(strings.TrimSpace(str)); role != "" {
					return role
				}
			}
		}
	}
	return ""
}

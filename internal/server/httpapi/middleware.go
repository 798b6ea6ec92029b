package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/you-kimono/checkilists/internal/logging"
)

const tokenKey = "bearer-token"

// bearerToken stores the token from "Authorization: Bearer <token>" in
// Locals. The token itself is verified by the session service.
func bearerToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header format must be Bearer {token}")
		}

		c.Locals(tokenKey, strings.TrimSpace(token))
		return c.Next()
	}
}

func token(c *fiber.Ctx) string {
	t, _ := c.Locals(tokenKey).(string)
	return t
}

// accessLog logs one line per request.
func accessLog(logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		logger.Info(c.UserContext(), "http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return nil
	}
}

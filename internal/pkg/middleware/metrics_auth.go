package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

// MetricsAuth protects the monitor page with basic auth when credentials are
// configured, and leaves it open otherwise.
func MetricsAuth(user, password string) fiber.Handler {
	if user == "" || password == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return basicauth.New(basicauth.Config{
		Users: map[string]string{user: password},
		Realm: "metrics",
	})
}

package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
)

// UserContext is the logged-in Platform user of a request, if any.
type UserContext struct {
	IsLoggedIn  bool   `json:"is_logged_in"`
	AccessToken string `json:"-"`
	// Claims is the raw JSON of the id token claims.
	Claims string `json:"-"`
}

// GetUserContext returns the request's user context, or an anonymous one.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// SetUserAPI attaches the Platform client acting as the logged-in user.
func SetUserAPI(c *fiber.Ctx, api platform.API) {
	c.Locals(KeyUserAPI, api)
}

// GetUserAPI returns the client set by SetUserAPI, or nil.
func GetUserAPI(c *fiber.Ctx) platform.API {
	if api, ok := c.Locals(KeyUserAPI).(platform.API); ok {
		return api
	}
	return nil
}

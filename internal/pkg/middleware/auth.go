package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/cache"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/usercontext"
)

// UserClientFactory builds Platform clients acting as a user.
type UserClientFactory interface {
	AsUser(accessToken string) (platform.API, error)
}

// RequireUserAPIClient rejects requests without a logged-in session and
// attaches a Platform client acting as the user.
func RequireUserAPIClient(factory UserClientFactory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userCtx := usercontext.GetUserContext(c)
		if !userCtx.IsLoggedIn {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Unauthorized",
			})
		}

		api, err := factory.AsUser(userCtx.AccessToken)
		if err != nil {
			log.Errorf("build user platform client: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "internal_server_error",
				"message": "Internal error",
			})
		}
		usercontext.SetUserAPI(c, api)
		return c.Next()
	}
}

// RequireOrgAccess answers 404 unless the user can see the organization in
// the :orgId route parameter. Must run after RequireUserAPIClient.
func RequireOrgAccess(access *cache.OrgAccess) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := c.Params("orgId")
		if orgID == "" {
			return notFound(c)
		}

		token := usercontext.GetUserContext(c).AccessToken
		if access.Allowed(c.UserContext(), token, orgID) {
			return c.Next()
		}

		api := usercontext.GetUserAPI(c)
		if api == nil {
			return notFound(c)
		}
		org, err := api.GetOrganization(c.UserContext(), orgID)
		if err != nil {
			log.Errorf("check access to organization %s: %v", orgID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "internal_server_error",
				"message": "Internal error",
			})
		}
		if org == nil {
			return notFound(c)
		}

		access.Remember(c.UserContext(), token, orgID)
		return c.Next()
	}
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   "not_found",
		"message": "Not found",
	})
}

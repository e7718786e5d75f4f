package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/PointsBridge/app/controllers"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		// Provider retries are driven by our status codes; never throttle them.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/webhooks/")
		},
	}))

	webhooks := controllers.NewWebhookController(h.deps.Webhooks, h.deps.Outcomes)
	api.Post("/webhooks/:type", webhooks.HandleWebhook)

	withUser := middleware.RequireUserAPIClient(h.deps.Platform)
	withOrgAccess := middleware.RequireOrgAccess(h.deps.OrgAccess)

	orgs := controllers.NewOrganizationController(h.deps.Repo, h.deps.Platform)
	api.Get("/organizations", withUser, orgs.HandleListOrganizations)
	api.Get("/organizations/:orgId", withUser, orgs.HandleGetOrganization)

	configs := controllers.NewOrgConfigController(h.deps.Repo)
	api.Get("/organizations/:orgId/config", withUser, withOrgAccess, configs.HandleGetConfig)
	api.Put("/organizations/:orgId/config", withUser, withOrgAccess, configs.HandlePutConfig)

	transactions := controllers.NewTransactionController(h.deps.Repo)
	api.Get("/transactions/:orgId", withUser, withOrgAccess, transactions.HandleListTransactions)

	fidel := controllers.NewProviderController(h.deps.Provider, h.deps.Repo)
	api.Get("/fidel/brands", withUser, fidel.HandleListBrands)
	api.Put("/fidel/org/:orgId/:brandId", withUser, orgs.HandleLinkBrand)
	api.Post("/fidel/location/:orgId", withUser, withOrgAccess, fidel.HandleCreateLocation)
	api.Get("/fidel/transactions/:orgId", withUser, withOrgAccess, fidel.HandleListTransactions)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

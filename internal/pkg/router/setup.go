package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	gsession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/PointsBridge/app/controllers"
	"github.com/ManuelReschke/PointsBridge/app/repository"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/cache"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// PlatformFactory hands out Platform clients for this service and for
// logged-in users, and exposes the issuer metadata for login.
type PlatformFactory interface {
	AsClient(ctx context.Context) (platform.API, error)
	AsUser(accessToken string) (platform.API, error)
	Discovery(ctx context.Context) (*platform.Discovery, error)
}

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Repo      repository.Repository
	Platform  PlatformFactory
	Provider  controllers.ProviderAPI
	Webhooks  controllers.DeliveryProcessor
	Outcomes  *counter.Outcomes
	Sessions  *gsession.Store
	OrgAccess *cache.OrgAccess
	Auth      controllers.AuthConfig

	MetricsUser     string
	MetricsPassword string
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// The HTTP router installs the session middleware the API routes rely on.
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

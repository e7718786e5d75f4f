package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContext(h.deps.Sessions))

	h.registerPublicRoutes(app)
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}

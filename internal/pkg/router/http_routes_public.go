package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/PointsBridge/app/controllers"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/constants"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.StatusRoute, func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	metricsAuth := middleware.MetricsAuth(h.deps.MetricsUser, h.deps.MetricsPassword)
	app.Get(constants.MetricsRoute, metricsAuth, monitor.New(monitor.Config{
		Title: "PointsBridge Metrics",
	}))
	app.Get(constants.WebhookMetricsRoute, metricsAuth, func(c *fiber.Ctx) error {
		totals, err := h.deps.Outcomes.Snapshot(c.UserContext())
		if err != nil {
			log.Errorf("webhook counters: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Counters unavailable"})
		}
		return c.JSON(totals)
	})

	// Platform login
	auth := controllers.NewAuthController(h.deps.Repo, h.deps.Platform, h.deps.Sessions, h.deps.Auth)
	app.Get(constants.LoginRoute, auth.HandleLogin)
	app.Get(constants.LoginCallbackRoute, auth.HandleCallback)
	app.Get(constants.LogoutRoute, auth.HandleLogout)
	app.Get("/api/me", auth.HandleMe)
}

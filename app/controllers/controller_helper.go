package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
)

// PlatformClients hands out the Platform client acting as this service.
type PlatformClients interface {
	AsClient(ctx context.Context) (platform.API, error)
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// internalError logs err and answers a 500 without exposing its text.
func internalError(c *fiber.Ctx, what string, err error) error {
	log.Errorf("%s: %v", what, err)
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Internal server error")
}

// handlePlatformError answers with 401 for Platform authorization failures,
// mirrors 400s and reports everything else as a 500.
func handlePlatformError(c *fiber.Ctx, what string, err error) error {
	switch {
	case errors.Is(err, platform.ErrUnauthorized):
		log.Warnf("%s: %v", what, err)
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, platform.ErrBadRequest):
		log.Warnf("%s: %v", what, err)
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	return internalError(c, what, err)
}

func notFound(c *fiber.Ctx) error {
	return jsonError(c, fiber.StatusNotFound, "not_found", "Not found")
}

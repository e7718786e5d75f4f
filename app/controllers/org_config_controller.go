package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"github.com/ManuelReschke/PointsBridge/app/repository"
)

// OrgConfigController reads and writes the per-organization points ratio.
type OrgConfigController struct {
	configRepo repository.OrgConfigRepository
	validate   *validator.Validate
}

func NewOrgConfigController(configRepo repository.OrgConfigRepository) *OrgConfigController {
	return &OrgConfigController{configRepo: configRepo, validate: validator.New()}
}

type orgConfigRequest struct {
	PointsForDollarSpent *float64 `json:"pointsForDollarSpent"`
}

// HandleGetConfig returns the stored config, or null.
func (oc *OrgConfigController) HandleGetConfig(c *fiber.Ctx) error {
	cfg, err := oc.configRepo.GetConfig(c.UserContext(), c.Params("orgId"))
	if err != nil {
		return internalError(c, "load config", err)
	}
	return c.JSON(cfg)
}

// HandlePutConfig upserts the config. An omitted ratio stores the default.
func (oc *OrgConfigController) HandlePutConfig(c *fiber.Ctx) error {
	orgID := c.Params("orgId")

	var req orgConfigRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Invalid request body")
		}
	}

	cfg := models.OrgConfig{OrgID: orgID, PointsForDollarSpent: models.DefaultPointsForDollarSpent}
	if req.PointsForDollarSpent != nil {
		cfg.PointsForDollarSpent = *req.PointsForDollarSpent
	}
	if err := oc.validate.Struct(cfg); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "pointsForDollarSpent must be greater than 0")
	}

	if err := oc.configRepo.SetConfig(c.UserContext(), orgID, cfg); err != nil {
		return internalError(c, "store config for "+orgID, err)
	}
	stored, err := oc.configRepo.GetConfig(c.UserContext(), orgID)
	if err != nil {
		return internalError(c, "reload config for "+orgID, err)
	}
	return c.JSON(stored)
}

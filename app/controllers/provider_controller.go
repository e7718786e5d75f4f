package controllers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PointsBridge/app/repository"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/provider"
)

// ProviderAPI is the card-linking provider surface used by the dashboard.
type ProviderAPI interface {
	ListBrands(ctx context.Context) ([]provider.Brand, error)
	CreateLocation(ctx context.Context, loc provider.Location) (*provider.Location, error)
	BrandTransactions(ctx context.Context, brandID string) ([]provider.Transaction, error)
}

// ProviderController proxies brand, location and transaction data from the
// card-linking provider.
type ProviderController struct {
	provider ProviderAPI
	orgRepo  repository.OrganizationRepository
	validate *validator.Validate
}

func NewProviderController(providerAPI ProviderAPI, orgRepo repository.OrganizationRepository) *ProviderController {
	return &ProviderController{provider: providerAPI, orgRepo: orgRepo, validate: validator.New()}
}

func (pc *ProviderController) handleProviderError(c *fiber.Ctx, what string, err error) error {
	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) {
		log.Warnf("%s: %v", what, err)
		return jsonError(c, statusErr.StatusCode, "provider_error", statusErr.Status)
	}
	return internalError(c, what, err)
}

// HandleListBrands returns the provider's brands, newest first.
func (pc *ProviderController) HandleListBrands(c *fiber.Ctx) error {
	brands, err := pc.provider.ListBrands(c.UserContext())
	if err != nil {
		return pc.handleProviderError(c, "list brands", err)
	}
	return c.JSON(brands)
}

// HandleCreateLocation registers a location for the organization's brand.
func (pc *ProviderController) HandleCreateLocation(c *fiber.Ctx) error {
	var loc provider.Location
	if err := c.BodyParser(&loc); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Invalid request body")
	}
	if err := pc.validate.Struct(loc); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", err.Error())
	}

	created, err := pc.provider.CreateLocation(c.UserContext(), loc)
	if err != nil {
		return pc.handleProviderError(c, "create location", err)
	}
	log.Infof("Created provider location %s for brand %s (organization %s)", created.ID, created.BrandID, c.Params("orgId"))
	return c.JSON(created)
}

// HandleListTransactions returns provider-side transactions for the
// organization's linked brand, or an empty list when it is not linked.
func (pc *ProviderController) HandleListTransactions(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	linked, err := pc.orgRepo.GetOrganization(c.UserContext(), orgID)
	if err != nil {
		return internalError(c, "load organization link "+orgID, err)
	}
	if linked == nil || linked.Brand.ID == "" {
		return c.JSON([]provider.Transaction{})
	}

	txs, err := pc.provider.BrandTransactions(c.UserContext(), linked.Brand.ID)
	if err != nil {
		return pc.handleProviderError(c, "list provider transactions", err)
	}
	return c.JSON(txs)
}

package controllers

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"github.com/ManuelReschke/PointsBridge/app/repository"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/usercontext"
)

// OrganizationController lists the user's organizations and links them to
// provider brands.
type OrganizationController struct {
	orgRepo  repository.OrganizationRepository
	clients  PlatformClients
	validate *validator.Validate
}

func NewOrganizationController(orgRepo repository.OrganizationRepository, clients PlatformClients) *OrganizationController {
	return &OrganizationController{orgRepo: orgRepo, clients: clients, validate: validator.New()}
}

// OrganizationView is a Platform organization with its installation state.
type OrganizationView struct {
	platform.Organization
	Installed bool          `json:"installed"`
	Activated bool          `json:"activated"`
	Brand     *models.Brand `json:"brand,omitempty"`
}

// bothOrganizations fetches the organization as the user and as this
// service concurrently.
func (oc *OrganizationController) bothOrganizations(ctx context.Context, user platform.API, orgID string) (userOrg, clientOrg *platform.Organization, err error) {
	client, err := oc.clients.AsClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	var (
		wg                 sync.WaitGroup
		userErr, clientErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		userOrg, userErr = user.GetOrganization(ctx, orgID)
	}()
	go func() {
		defer wg.Done()
		clientOrg, clientErr = client.GetOrganization(ctx, orgID)
	}()
	wg.Wait()

	if err := errors.Join(userErr, clientErr); err != nil {
		return nil, nil, err
	}
	return userOrg, clientOrg, nil
}

// HandleListOrganizations returns the organizations the user can access that
// are installed for this service.
func (oc *OrganizationController) HandleListOrganizations(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user := usercontext.GetUserAPI(c)
	client, err := oc.clients.AsClient(ctx)
	if err != nil {
		return handlePlatformError(c, "platform client", err)
	}

	var (
		wg                   sync.WaitGroup
		userOrgs, clientOrgs *platform.ListResponse[platform.Organization]
		userErr, clientErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		userOrgs, userErr = user.ListOrganizations(ctx, platform.ListOptions{AutoPage: true})
	}()
	go func() {
		defer wg.Done()
		clientOrgs, clientErr = client.ListOrganizations(ctx, platform.ListOptions{AutoPage: true})
	}()
	wg.Wait()
	if err := errors.Join(userErr, clientErr); err != nil {
		return handlePlatformError(c, "list organizations", err)
	}

	installed := make(map[string]bool, len(clientOrgs.Items))
	for _, o := range clientOrgs.Items {
		installed[o.ID] = true
	}

	views := make([]OrganizationView, 0, len(userOrgs.Items))
	for _, o := range userOrgs.Items {
		if !installed[o.ID] {
			continue
		}
		linked, err := oc.orgRepo.GetOrganization(ctx, o.ID)
		if err != nil {
			return internalError(c, "load organization link "+o.ID, err)
		}
		views = append(views, OrganizationView{Organization: o, Installed: true, Activated: linked != nil})
	}
	return c.JSON(views)
}

// HandleGetOrganization returns one organization with its linked brand.
func (oc *OrganizationController) HandleGetOrganization(c *fiber.Ctx) error {
	ctx := c.UserContext()
	orgID := c.Params("orgId")

	userOrg, clientOrg, err := oc.bothOrganizations(ctx, usercontext.GetUserAPI(c), orgID)
	if err != nil {
		return handlePlatformError(c, "load organization", err)
	}
	if userOrg == nil {
		return notFound(c)
	}

	view := OrganizationView{Organization: *userOrg, Installed: clientOrg != nil}
	if clientOrg != nil {
		linked, err := oc.orgRepo.GetOrganization(ctx, clientOrg.ID)
		if err != nil {
			return internalError(c, "load organization link "+orgID, err)
		}
		if linked != nil {
			view.Activated = true
			view.Brand = &linked.Brand
		}
	}
	return c.JSON(view)
}

// HandleLinkBrand links the organization to a provider brand. An
// organization can be linked once.
func (oc *OrganizationController) HandleLinkBrand(c *fiber.Ctx) error {
	ctx := c.UserContext()
	orgID := c.Params("orgId")
	brandID := c.Params("brandId")

	var brand models.Brand
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&brand); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Invalid request body")
		}
	}
	if brand.ID == "" {
		brand.ID = brandID
	}
	if brand.ID != brandID {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Brand id does not match the route")
	}
	if err := oc.validate.Struct(brand); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Brand id and name are required")
	}

	existing, err := oc.orgRepo.GetOrganization(ctx, orgID)
	if err != nil {
		return internalError(c, "load organization link "+orgID, err)
	}
	if existing != nil {
		return jsonError(c, fiber.StatusBadRequest, "already_linked", "Organization is already linked to a brand")
	}

	userOrg, clientOrg, err := oc.bothOrganizations(ctx, usercontext.GetUserAPI(c), orgID)
	if err != nil {
		return handlePlatformError(c, "load organization", err)
	}
	if userOrg == nil || clientOrg == nil {
		return notFound(c)
	}

	if _, err := oc.orgRepo.LinkBrandToOrganization(ctx, clientOrg.ID, brand); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return jsonError(c, fiber.StatusBadRequest, "already_linked", "Organization is already linked to a brand")
		}
		log.Errorf("link brand %s to %s: %v", brand.ID, orgID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Error in linking brand")
	}
	log.Infof("Linked organization %s to brand %s", clientOrg.ID, brand.ID)
	return c.JSON(true)
}

package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/usercontext"
)

type fakeOrgAPI struct {
	platform.API
	visible map[string]bool
	err     error
	calls   int
}

func (f *fakeOrgAPI) GetOrganization(_ context.Context, id string) (*platform.Organization, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !f.visible[id] {
		return nil, nil
	}
	return &platform.Organization{ID: id}, nil
}

type fakeFactory struct {
	api   *fakeOrgAPI
	token string
}

func (f *fakeFactory) AsUser(token string) (platform.API, error) {
	f.token = token
	return f.api, nil
}

func newGatedApp(loggedIn bool, factory *fakeFactory) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{IsLoggedIn: loggedIn, AccessToken: "user-token"})
		return c.Next()
	})
	app.Get("/orgs/:orgId", RequireUserAPIClient(factory), RequireOrgAccess(nil), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRequireUserAPIClient(t *testing.T) {
	factory := &fakeFactory{api: &fakeOrgAPI{visible: map[string]bool{"org-1": true}}}

	resp, err := newGatedApp(false, factory).Test(httptest.NewRequest("GET", "/orgs/org-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = newGatedApp(true, factory).Test(httptest.NewRequest("GET", "/orgs/org-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-token", factory.token)
}

func TestRequireOrgAccess(t *testing.T) {
	api := &fakeOrgAPI{visible: map[string]bool{"org-1": true}}
	app := newGatedApp(true, &fakeFactory{api: api})

	resp, err := app.Test(httptest.NewRequest("GET", "/orgs/org-2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	api.err = errors.New("platform down")
	resp, err = app.Test(httptest.NewRequest("GET", "/orgs/org-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestMetricsAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/open", MetricsAuth("", ""), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/closed", MetricsAuth("ops", "s3cret"), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/closed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/closed", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("ops:s3cret")))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

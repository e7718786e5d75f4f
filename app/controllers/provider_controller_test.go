package controllers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PointsBridge/app/models"
	"github.com/ManuelReschke/PointsBridge/app/repository"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/provider"
)

type fakeProvider struct {
	brands       []provider.Brand
	created      []provider.Location
	transactions map[string][]provider.Transaction
	err          error
}

func (f *fakeProvider) ListBrands(context.Context) ([]provider.Brand, error) {
	return f.brands, f.err
}

func (f *fakeProvider) CreateLocation(_ context.Context, loc provider.Location) (*provider.Location, error) {
	if f.err != nil {
		return nil, f.err
	}
	loc.ID = "loc-new"
	f.created = append(f.created, loc)
	return &loc, nil
}

func (f *fakeProvider) BrandTransactions(_ context.Context, brandID string) ([]provider.Transaction, error) {
	return f.transactions[brandID], f.err
}

func newProviderApp(repo repository.Repository, fp *fakeProvider) *fiber.App {
	pc := NewProviderController(fp, repo)
	app := fiber.New()
	app.Get("/api/fidel/brands", pc.HandleListBrands)
	app.Post("/api/fidel/location/:orgId", pc.HandleCreateLocation)
	app.Get("/api/fidel/transactions/:orgId", pc.HandleListTransactions)
	return app
}

func TestProviderBrands(t *testing.T) {
	fp := &fakeProvider{brands: []provider.Brand{{ID: "b1", Name: "Brand"}}}
	app := newProviderApp(repository.NewMemoryRepository(), fp)

	resp, body := doJSON(t, app, "GET", "/api/fidel/brands", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var brands []provider.Brand
	require.NoError(t, json.Unmarshal([]byte(body), &brands))
	assert.Equal(t, "b1", brands[0].ID)

	fp.err = &provider.StatusError{StatusCode: fiber.StatusForbidden, Status: "Forbidden"}
	resp, _ = doJSON(t, app, "GET", "/api/fidel/brands", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestProviderCreateLocation(t *testing.T) {
	fp := &fakeProvider{}
	app := newProviderApp(repository.NewMemoryRepository(), fp)

	resp, body := doJSON(t, app, "POST", "/api/fidel/location/org-1",
		`{"brandId":"b1","address":"1 Main St","city":"London","countryCode":"GBR","postcode":"E1 6AN"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	require.Len(t, fp.created, 1)
	assert.Contains(t, body, `"id":"loc-new"`)

	resp, _ = doJSON(t, app, "POST", "/api/fidel/location/org-1", `{"brandId":"b1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Len(t, fp.created, 1)
}

func TestProviderTransactions(t *testing.T) {
	repo := repository.NewMemoryRepository()
	_, err := repo.LinkBrandToOrganization(context.Background(), "org-1", models.Brand{ID: "b1", Name: "B"})
	require.NoError(t, err)
	fp := &fakeProvider{transactions: map[string][]provider.Transaction{
		"b1": {{ID: "t1", Amount: 5}},
	}}
	app := newProviderApp(repo, fp)

	resp, body := doJSON(t, app, "GET", "/api/fidel/transactions/org-1", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"id":"t1"`)

	resp, body = doJSON(t, app, "GET", "/api/fidel/transactions/org-2", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", body)
}

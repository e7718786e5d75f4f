package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/v1/", APIKey: "sk_test", ProgramID: "prog-1"})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKeyAndProgram(t *testing.T) {
	_, err := NewClient(Config{ProgramID: "p"})
	assert.Error(t, err)
	_, err = NewClient(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestListBrands(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/brands", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "sk_test", r.Header.Get("Fidel-Key"))
		_, _ = w.Write([]byte(`{"items":[{"id":"b1","name":"Brand One"}],"count":1}`))
	})

	brands, err := c.ListBrands(context.Background())
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "Brand One", brands[0].Name)
}

func TestListBrandsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	_, err := c.ListBrands(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "Forbidden", statusErr.Status)
}

func TestCreateLocation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/programs/prog-1/locations", r.URL.Path)

		var loc Location
		require.NoError(t, json.NewDecoder(r.Body).Decode(&loc))
		loc.ID = "loc-1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []Location{loc}})
	})

	created, err := c.CreateLocation(context.Background(), Location{
		BrandID: "b1", Address: "1 Main St", City: "London", CountryCode: "GBR", Postcode: "E1 6AN",
	})
	require.NoError(t, err)
	assert.Equal(t, "loc-1", created.ID)
	assert.Equal(t, "b1", created.BrandID)
}

func TestBrandTransactionsFiltersFirstLocation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/brands/b1/programs/prog-1/locations":
			_, _ = w.Write([]byte(`{"items":[{"id":"loc-1"},{"id":"loc-2"}]}`))
		case "/v1/programs/prog-1/transactions":
			_, _ = w.Write([]byte(`{"items":[
				{"id":"t1","amount":5,"location":{"id":"loc-1"}},
				{"id":"t2","amount":6,"location":{"id":"loc-2"}},
				{"id":"t3","amount":7,"location":{"id":"loc-1"}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	txs, err := c.BrandTransactions(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t1", txs[0].ID)
	assert.Equal(t, "t3", txs[1].ID)
}

func TestBrandTransactionsWithoutLocations(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	txs, err := c.BrandTransactions(context.Background(), "b1")
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
	assert.Equal(t, 1, calls)
}

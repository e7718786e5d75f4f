package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultAPIBaseURL = "https://api.fidel.uk/v1"

// Brand is a merchant brand registered with the provider.
type Brand struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	LogoURL    *string `json:"logoURL,omitempty"`
	WebsiteURL *string `json:"websiteURL,omitempty"`
	Created    string  `json:"created,omitempty"`
	Live       bool    `json:"live"`
}

// Location is a card-linked store location of a brand inside a program.
type Location struct {
	ID          string            `json:"id,omitempty"`
	BrandID     string            `json:"brandId" validate:"required"`
	Address     string            `json:"address" validate:"required"`
	City        string            `json:"city" validate:"required"`
	CountryCode string            `json:"countryCode" validate:"required,len=3"`
	Postcode    string            `json:"postcode" validate:"required"`
	Searchable  *bool             `json:"searchable,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Created     string            `json:"created,omitempty"`
}

// Transaction is a card transaction as reported by the provider API.
type Transaction struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Created  string  `json:"created"`
	Cleared  bool    `json:"cleared"`
	Brand    Ref     `json:"brand"`
	Location Ref     `json:"location"`
	Card     struct {
		ID          string         `json:"id"`
		LastNumbers string         `json:"lastNumbers,omitempty"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	} `json:"card"`
}

// StatusError is a non-2xx answer from the provider API.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider api: status=%d body=%s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	ProgramID  string
	HTTPClient *http.Client
}

// Client talks to the card-linking provider with a secret API key.
type Client struct {
	baseURL    string
	apiKey     string
	programID  string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("PROVIDER_API_KEY is not configured")
	}
	if strings.TrimSpace(cfg.ProgramID) == "" {
		return nil, errors.New("PROVIDER_PROGRAM_ID is not configured")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		programID:  cfg.ProgramID,
		httpClient: httpClient,
	}, nil
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

// ListBrands returns the newest brands first.
func (c *Client) ListBrands(ctx context.Context) ([]Brand, error) {
	var out itemsResponse[Brand]
	q := url.Values{"limit": {"100"}, "order": {"desc"}}
	if err := c.do(ctx, http.MethodGet, "/brands", q, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Items), nil
}

// CreateLocation registers a location in the configured program.
func (c *Client) CreateLocation(ctx context.Context, loc Location) (*Location, error) {
	var out itemsResponse[Location]
	path := "/programs/" + url.PathEscape(c.programID) + "/locations"
	if err := c.do(ctx, http.MethodPost, path, nil, loc, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, errors.New("provider api: create location returned no items")
	}
	return &out.Items[0], nil
}

// ListLocations returns the brand's locations in the configured program.
func (c *Client) ListLocations(ctx context.Context, brandID string) ([]Location, error) {
	var out itemsResponse[Location]
	path := "/brands/" + url.PathEscape(brandID) + "/programs/" + url.PathEscape(c.programID) + "/locations"
	if err := c.do(ctx, http.MethodGet, path, url.Values{"limit": {"100"}}, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Items), nil
}

// ListTransactions returns the latest transactions of the configured program.
func (c *Client) ListTransactions(ctx context.Context) ([]Transaction, error) {
	var out itemsResponse[Transaction]
	path := "/programs/" + url.PathEscape(c.programID) + "/transactions"
	if err := c.do(ctx, http.MethodGet, path, url.Values{"limit": {"100"}}, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Items), nil
}

// BrandTransactions returns the program transactions made at the brand's
// first location. A brand without locations has no transactions.
func (c *Client) BrandTransactions(ctx context.Context, brandID string) ([]Transaction, error) {
	locations, err := c.ListLocations(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return []Transaction{}, nil
	}

	transactions, err := c.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Location.ID == locations[0].ID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, want int, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Fidel-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != want {
		return &StatusError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

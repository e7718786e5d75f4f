package platform

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

	"github.com/gofiber/fiber/v2/log"
)

const (
	DefaultAPIBaseURL = "https://api.loke.global/"

	nextPageHeader = "X-Next-Page"
)

// API is the Platform operation surface. Client implements it with a fixed
// bearer token; AuthClient implements it with transparent token refresh.
type API interface {
	ListOrganizations(ctx context.Context, opts ListOptions) (*ListResponse[Organization], error)
	GetOrganization(ctx context.Context, organizationID string) (*Organization, error)
	ListLocations(ctx context.Context, organizationID string, opts ListOptions) (*ListResponse[Location], error)
	GetLocation(ctx context.Context, organizationID, locationID string) (*Location, error)
	ListCustomers(ctx context.Context, organizationID string, query CustomerQuery, opts ListOptions) (*ListResponse[Customer], error)
	GetCustomer(ctx context.Context, organizationID, customerID string) (*Customer, error)
	ListCustomerLists(ctx context.Context, organizationID string, opts ListOptions) (*ListResponse[CustomerList], error)
	ListCustomerListMembers(ctx context.Context, organizationID, listID string, opts ListOptions) (*ListResponse[ListMember], error)
	AddCustomerListMember(ctx context.Context, organizationID, listID, customerID string) error
	RemoveCustomerListMember(ctx context.Context, organizationID, listID, customerID string) error
	ListWebhooks(ctx context.Context, organizationID string) ([]WebhookSubscription, error)
	SubscribeWebhook(ctx context.Context, organizationID, webhookRef string, subscription WebhookSubscriptionRequest) ([]WebhookSubscription, error)
	UnsubscribeWebhook(ctx context.Context, organizationID, webhookRef string) error
	AdjustCustomerPointsBalance(ctx context.Context, organizationID, customerID, reference string, amount float64, notes string) error
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// Client is a stateless typed client for the Platform REST API.
type Client struct {
	baseURL     *url.URL
	accessToken string
	httpClient  *http.Client
}

var _ API = (*Client)(nil)

// NewClient creates a Platform client authenticated with the given token.
func NewClient(opts ClientOptions) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid platform api url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL:     u,
		accessToken: opts.AccessToken,
		httpClient:  httpClient,
	}, nil
}

func (c *Client) ListOrganizations(ctx context.Context, opts ListOptions) (*ListResponse[Organization], error) {
	return listAll(ctx, opts, func(ctx context.Context, after string) (*ListResponse[Organization], error) {
		return getPage[Organization](ctx, c, "organizations", afterQuery(after))
	})
}

func (c *Client) GetOrganization(ctx context.Context, organizationID string) (*Organization, error) {
	return getOne[Organization](ctx, c, joinPath("organizations", organizationID))
}

func (c *Client) ListLocations(ctx context.Context, organizationID string, opts ListOptions) (*ListResponse[Location], error) {
	return listAll(ctx, opts, func(ctx context.Context, after string) (*ListResponse[Location], error) {
		return getPage[Location](ctx, c, joinPath("organizations", organizationID, "locations"), afterQuery(after))
	})
}

func (c *Client) GetLocation(ctx context.Context, organizationID, locationID string) (*Location, error) {
	return getOne[Location](ctx, c, joinPath("organizations", organizationID, "locations", locationID))
}

func (c *Client) ListCustomers(ctx context.Context, organizationID string, query CustomerQuery, opts ListOptions) (*ListResponse[Customer], error) {
	return listAll(ctx, opts, func(ctx context.Context, after string) (*ListResponse[Customer], error) {
		q := afterQuery(after)
		if query.Email != "" {
			q.Set("email", query.Email)
		}
		return getPage[Customer](ctx, c, joinPath("organizations", organizationID, "customers"), q)
	})
}

func (c *Client) GetCustomer(ctx context.Context, organizationID, customerID string) (*Customer, error) {
	return getOne[Customer](ctx, c, joinPath("organizations", organizationID, "customers", customerID))
}

func (c *Client) ListCustomerLists(ctx context.Context, organizationID string, opts ListOptions) (*ListResponse[CustomerList], error) {
	return listAll(ctx, opts, func(ctx context.Context, after string) (*ListResponse[CustomerList], error) {
		return getPage[CustomerList](ctx, c, joinPath("organizations", organizationID, "customer-lists"), afterQuery(after))
	})
}

func (c *Client) ListCustomerListMembers(ctx context.Context, organizationID, listID string, opts ListOptions) (*ListResponse[ListMember], error) {
	return listAll(ctx, opts, func(ctx context.Context, after string) (*ListResponse[ListMember], error) {
		return getPage[ListMember](ctx, c, joinPath("organizations", organizationID, "customer-lists", listID, "members"), afterQuery(after))
	})
}

func (c *Client) AddCustomerListMember(ctx context.Context, organizationID, listID, customerID string) error {
	_, err := c.do(ctx, http.MethodPut, joinPath("organizations", organizationID, "customer-lists", listID, "members", customerID), nil, nil, nil)
	return err
}

func (c *Client) RemoveCustomerListMember(ctx context.Context, organizationID, listID, customerID string) error {
	_, err := c.do(ctx, http.MethodDelete, joinPath("organizations", organizationID, "customer-lists", listID, "members", customerID), nil, nil, nil)
	return err
}

func (c *Client) ListWebhooks(ctx context.Context, organizationID string) ([]WebhookSubscription, error) {
	var out []WebhookSubscription
	if _, err := c.do(ctx, http.MethodGet, joinPath("organizations", organizationID, "webhooks"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubscribeWebhook(ctx context.Context, organizationID, webhookRef string, subscription WebhookSubscriptionRequest) ([]WebhookSubscription, error) {
	var out []WebhookSubscription
	if _, err := c.do(ctx, http.MethodPut, joinPath("organizations", organizationID, "webhooks", webhookRef), nil, subscription, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UnsubscribeWebhook(ctx context.Context, organizationID, webhookRef string) error {
	_, err := c.do(ctx, http.MethodDelete, joinPath("organizations", organizationID, "webhooks", webhookRef), nil, nil, nil)
	return err
}

// AdjustCustomerPointsBalance adds amount points (negative to deduct) to the
// customer's balance. The Platform applies each reference at most once, so
// the caller must supply a fresh reference per adjustment and reuse it only
// when retrying that same adjustment.
func (c *Client) AdjustCustomerPointsBalance(ctx context.Context, organizationID, customerID, reference string, amount float64, notes string) error {
	if strings.TrimSpace(reference) == "" {
		return errors.New("points adjustment reference is required")
	}
	body := PointsAdjustment{Amount: amount, Notes: notes}
	_, err := c.do(ctx, http.MethodPut, joinPath("organizations", organizationID, "customers", customerID, "points", reference), nil, body, nil)
	return err
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var out T
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func getPage[T any](ctx context.Context, c *Client, path string, query url.Values) (*ListResponse[T], error) {
	items := make([]T, 0)
	header, err := c.do(ctx, http.MethodGet, path, query, nil, &items)
	if err != nil {
		return nil, err
	}
	cursor, err := c.cursorFromNextPage(header.Get(nextPageHeader))
	if err != nil {
		return nil, err
	}
	return &ListResponse[T]{Items: items, Cursor: cursor}, nil
}

// cursorFromNextPage extracts the "after" cursor from the next-page link.
// An empty link means the last page; a link without a cursor is a protocol
// violation.
func (c *Client) cursorFromNextPage(nextPage string) (string, error) {
	nextPage = strings.TrimSpace(nextPage)
	if nextPage == "" {
		return "", nil
	}
	ref, err := url.Parse(nextPage)
	if err != nil {
		return "", fmt.Errorf("%w: unparsable next page %q: %v", ErrProtocol, nextPage, err)
	}
	after := c.baseURL.ResolveReference(ref).Query().Get("after")
	if after == "" {
		return "", fmt.Errorf("%w: next page %q has no cursor", ErrProtocol, nextPage)
	}
	return after, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return nil, mErr
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, c.mapError(method, u.Path, resp, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.Header, fmt.Errorf("decode %s %s: %w", method, u.Path, err)
		}
	}
	return resp.Header, nil
}

func (c *Client) mapError(method, path string, resp *http.Response, body []byte) error {
	message := http.StatusText(resp.StatusCode)
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		message = parsed.Message
	}

	apiErr := newAPIError(resp.StatusCode, message, string(body))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusBadRequest, http.StatusInternalServerError, http.StatusNotFound:
	default:
		log.Errorf("platform api: unexpected status %d for %s %s: %s", resp.StatusCode, method, path, string(body))
	}
	return apiErr
}

func afterQuery(after string) url.Values {
	q := url.Values{}
	if after != "" {
		q.Set("after", after)
	}
	return q
}

func joinPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

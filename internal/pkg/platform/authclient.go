package platform

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/gofiber/fiber/v2/log"
)

// ClientBuilder builds an inner client for an access token.
type ClientBuilder func(accessToken string) (API, error)

type apiHandle struct {
	api API
}

// AuthClient decorates a Platform client with credential lifecycle. A call
// that fails with ErrUnauthorized triggers exactly one refresh-and-retry;
// every other error, and any failure during the retry, is returned as is.
//
// Concurrent calls that all see a 401 may each refresh. Refresh is cheap and
// idempotent, and swapping the inner client is a single atomic store of an
// immutable value, so readers see either the old or the new client. A
// single-flight refresh would be a stricter alternative.
type AuthClient struct {
	refresher Refresher
	build     ClientBuilder
	current   atomic.Pointer[apiHandle]
	ready     chan struct{}
}

var _ API = (*AuthClient)(nil)

// NewAuthClient creates the wrapper and starts the initial refresh in the
// background. Calls made before it finishes wait for it. If the initial
// refresh fails the wrapper still works: the first call is rejected as
// unauthorized and goes through the normal refresh-and-retry.
func NewAuthClient(ctx context.Context, refresher Refresher, build ClientBuilder) (*AuthClient, error) {
	if refresher == nil || build == nil {
		return nil, errors.New("platform: refresher and client builder are required")
	}
	inner, err := build("")
	if err != nil {
		return nil, err
	}

	a := &AuthClient{
		refresher: refresher,
		build:     build,
		ready:     make(chan struct{}),
	}
	a.current.Store(&apiHandle{api: inner})

	go func() {
		defer close(a.ready)
		if _, err := a.refreshClient(ctx); err != nil {
			log.Errorf("Initial platform authentication failed: %v", err)
		}
	}()
	return a, nil
}

// Ready blocks until the initial refresh has completed.
func (a *AuthClient) Ready(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AuthClient) client() API {
	return a.current.Load().api
}

// refreshClient fetches new credentials and swaps in a client built on them.
func (a *AuthClient) refreshClient(ctx context.Context) (API, error) {
	creds, err := a.refresher.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.AccessToken == "" {
		return nil, errors.New("missing access_token")
	}
	inner, err := a.build(creds.AccessToken)
	if err != nil {
		return nil, err
	}
	a.current.Store(&apiHandle{api: inner})
	return inner, nil
}

func call[T any](ctx context.Context, a *AuthClient, fn func(API) (T, error)) (T, error) {
	var zero T
	if err := a.Ready(ctx); err != nil {
		return zero, err
	}

	out, err := fn(a.client())
	if err == nil || !IsUnauthorized(err) {
		return out, err
	}

	log.Info("Access token unauthorized, trying to refresh")
	fresh, err := a.refreshClient(ctx)
	if err != nil {
		log.Errorf("Unable to refresh platform tokens, err=%v", err)
		return zero, err
	}
	log.Info("Tokens refreshed, retrying call")
	return fn(fresh)
}

func callErr(ctx context.Context, a *AuthClient, fn func(API) error) error {
	_, err := call(ctx, a, func(api API) (struct{}, error) {
		return struct{}{}, fn(api)
	})
	return err
}

func (a *AuthClient) ListOrganizations(ctx context.Context, opts ListOptions) (*ListResponse[Organization], error) {
	return call(ctx, a, func(api API) (*ListResponse[Organization], error) {
		return api.ListOrganizations(ctx, opts)
	})
}

func (a *AuthClient) GetOrganization(ctx context.Context, organizationID string) (*Organization, error) {
	return call(ctx, a, func(api API) (*Organization, error) {
		return api.GetOrganization(ctx, organizationID)
	})
}

func (a *AuthClient) ListLocations(ctx context.Context, organizationID string, opts ListOptions) (*ListResponse[Location], error) {
	return call(ctx, a, func(api API) (*ListResponse[Location], error) {
		return api.ListLocations(ctx, organizationID, opts)
	})
}

func (a *AuthClient) GetLocation(ctx context.Context, organizationID, locationID string) (*Location, error) {
	return call(ctx, a, func(api API) (*Location, error) {
		return api.GetLocation(ctx, organizationID, locationID)
	})
}

func (a *AuthClient) ListCustomers(ctx context.Context, organizationID string, query CustomerQuery, opts ListOptions) (*ListResponse[Customer], error) {
	return call(ctx, a, func(api API) (*ListResponse[Customer], error) {
		return api.ListCustomers(ctx, organizationID, query, opts)
	})
}

func (a *AuthClient) GetCustomer(ctx context.Context, organizationID, customerID string) (*Customer, error) {
	return call(ctx, a, func(api API) (*Customer, error) {
		return api.GetCustomer(ctx, organizationID, customerID)
	})
}

func (a *AuthClient) ListCustomerLists(ctx context.Context, organizationID string, opts ListOptions) (*ListResponse[CustomerList], error) {
	return call(ctx, a, func(api API) (*ListResponse[CustomerList], error) {
		return api.ListCustomerLists(ctx, organizationID, opts)
	})
}

func (a *AuthClient) ListCustomerListMembers(ctx context.Context, organizationID, listID string, opts ListOptions) (*ListResponse[ListMember], error) {
	return call(ctx, a, func(api API) (*ListResponse[ListMember], error) {
		return api.ListCustomerListMembers(ctx, organizationID, listID, opts)
	})
}

func (a *AuthClient) AddCustomerListMember(ctx context.Context, organizationID, listID, customerID string) error {
	return callErr(ctx, a, func(api API) error {
		return api.AddCustomerListMember(ctx, organizationID, listID, customerID)
	})
}

func (a *AuthClient) RemoveCustomerListMember(ctx context.Context, organizationID, listID, customerID string) error {
	return callErr(ctx, a, func(api API) error {
		return api.RemoveCustomerListMember(ctx, organizationID, listID, customerID)
	})
}

func (a *AuthClient) ListWebhooks(ctx context.Context, organizationID string) ([]WebhookSubscription, error) {
	return call(ctx, a, func(api API) ([]WebhookSubscription, error) {
		return api.ListWebhooks(ctx, organizationID)
	})
}

func (a *AuthClient) SubscribeWebhook(ctx context.Context, organizationID, webhookRef string, subscription WebhookSubscriptionRequest) ([]WebhookSubscription, error) {
	return call(ctx, a, func(api API) ([]WebhookSubscription, error) {
		return api.SubscribeWebhook(ctx, organizationID, webhookRef, subscription)
	})
}

func (a *AuthClient) UnsubscribeWebhook(ctx context.Context, organizationID, webhookRef string) error {
	return callErr(ctx, a, func(api API) error {
		return api.UnsubscribeWebhook(ctx, organizationID, webhookRef)
	})
}

// AdjustCustomerPointsBalance retries with the same reference after a
// refresh; a 401 means the Platform never applied the first attempt.
func (a *AuthClient) AdjustCustomerPointsBalance(ctx context.Context, organizationID, customerID, reference string, amount float64, notes string) error {
	return callErr(ctx, a, func(api API) error {
		return api.AdjustCustomerPointsBalance(ctx, organizationID, customerID, reference, amount, notes)
	})
}

package platform

import (
	"context"
	"net/http"
)

// FactoryConfig configures a Factory.
type FactoryConfig struct {
	ClientID     string
	ClientSecret string
	IssuerURL    string
	APIBaseURL   string
	HTTPClient   *http.Client
}

// Factory hands out Platform clients: one shared client authenticated as
// this service, and per-request clients authenticated as a logged-in user.
type Factory struct {
	apiBaseURL string
	httpClient *http.Client
	refresher  *TokenRefresher
	client     *AuthClient
}

// NewFactory validates the credentials and starts authenticating the shared
// client in the background.
func NewFactory(ctx context.Context, cfg FactoryConfig) (*Factory, error) {
	refresher, err := NewTokenRefresher(TokenRefresherConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		IssuerURL:    cfg.IssuerURL,
	})
	if err != nil {
		return nil, err
	}

	f := &Factory{
		apiBaseURL: cfg.APIBaseURL,
		httpClient: cfg.HTTPClient,
		refresher:  refresher,
	}
	f.client, err = NewAuthClient(ctx, refresher, f.build)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Factory) build(accessToken string) (API, error) {
	return NewClient(ClientOptions{
		BaseURL:     f.apiBaseURL,
		AccessToken: accessToken,
		HTTPClient:  f.httpClient,
	})
}

// AsUser returns a client acting with a logged-in user's access token.
func (f *Factory) AsUser(userAccessToken string) (API, error) {
	return f.build(userAccessToken)
}

// AsClient returns the shared client once its initial authentication has
// finished.
func (f *Factory) AsClient(ctx context.Context) (API, error) {
	if err := f.client.Ready(ctx); err != nil {
		return nil, err
	}
	return f.client, nil
}

// Discovery exposes the issuer metadata used for the interactive login.
func (f *Factory) Discovery(ctx context.Context) (*Discovery, error) {
	return f.refresher.Discovery(ctx)
}

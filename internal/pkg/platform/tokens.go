package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/config"
)

const (
	DefaultIssuerURL = "https://auth-next.loke.global/"

	// identityTimeout bounds every call to the identity provider.
	identityTimeout = 7500 * time.Millisecond
)

// Discovery is the subset of the issuer's OpenID metadata this service uses.
type Discovery struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	EndSessionEndpoint    string `json:"end_session_endpoint,omitempty"`
}

// Credentials is the result of one client-credentials grant.
type Credentials struct {
	AccessToken string
	TokenType   string
	Expiry      time.Time
	Claims      map[string]any
}

// Refresher obtains fresh client credentials. TokenRefresher is the
// production implementation; tests substitute their own.
type Refresher interface {
	Refresh(ctx context.Context) (*Credentials, error)
}

// TokenRefresherConfig configures a TokenRefresher.
type TokenRefresherConfig struct {
	ClientID     string
	ClientSecret string
	IssuerURL    string
	HTTPClient   *http.Client
}

// TokenRefresher performs a client-credentials grant against the issuer's
// discovered token endpoint. It does not cache tokens. Discovery happens once
// on first use; later refreshes reuse it and re-discover in the background.
type TokenRefresher struct {
	clientID     string
	clientSecret string
	issuerURL    string
	httpClient   *http.Client

	discoverMu    sync.Mutex
	discovery     atomic.Pointer[Discovery]
	rediscovering atomic.Bool
}

var _ Refresher = (*TokenRefresher)(nil)

// NewTokenRefresher validates the client credentials and returns a refresher.
// Missing credentials are a *config.ConfigError.
func NewTokenRefresher(cfg TokenRefresherConfig) (*TokenRefresher, error) {
	var missing []string
	if strings.TrimSpace(cfg.ClientID) == "" {
		missing = append(missing, "PLATFORM_CLIENT_ID")
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		missing = append(missing, "PLATFORM_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return nil, &config.ConfigError{Missing: missing}
	}

	issuer := strings.TrimSpace(cfg.IssuerURL)
	if issuer == "" {
		issuer = DefaultIssuerURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: identityTimeout}
	}

	return &TokenRefresher{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		issuerURL:    issuer,
		httpClient:   httpClient,
	}, nil
}

// Refresh performs a fresh grant. A rejected grant is returned as a
// *GrantError and is not retried here.
func (r *TokenRefresher) Refresh(ctx context.Context) (*Credentials, error) {
	d, err := r.currentDiscovery(ctx)
	if err != nil {
		return nil, err
	}

	cc := clientcredentials.Config{
		ClientID:     r.clientID,
		ClientSecret: r.clientSecret,
		TokenURL:     d.TokenEndpoint,
	}
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, r.httpClient))
	if err != nil {
		log.Errorf("Unable to refresh platform token for client_id=%s: %v", r.clientID, err)
		return nil, &GrantError{Err: err}
	}
	if tok.AccessToken == "" {
		return nil, &GrantError{Err: errors.New("missing access_token")}
	}

	log.Info("Platform token refreshed")
	return &Credentials{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      tok.Expiry,
		Claims:      DecodeClaims(tok.AccessToken),
	}, nil
}

// Discovery returns the issuer metadata, discovering it on first use.
func (r *TokenRefresher) Discovery(ctx context.Context) (*Discovery, error) {
	if d := r.discovery.Load(); d != nil {
		return d, nil
	}
	r.discoverMu.Lock()
	defer r.discoverMu.Unlock()
	if d := r.discovery.Load(); d != nil {
		return d, nil
	}
	d, err := DiscoverIssuer(ctx, r.httpClient, r.issuerURL)
	if err != nil {
		return nil, err
	}
	r.discovery.Store(d)
	return d, nil
}

func (r *TokenRefresher) currentDiscovery(ctx context.Context) (*Discovery, error) {
	if d := r.discovery.Load(); d != nil {
		r.rediscover()
		return d, nil
	}
	return r.Discovery(ctx)
}

// rediscover refreshes the cached metadata without blocking the caller. At
// most one background discovery runs at a time; on failure the previous
// metadata stays in use.
func (r *TokenRefresher) rediscover() {
	if !r.rediscovering.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer r.rediscovering.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), identityTimeout)
		defer cancel()
		d, err := DiscoverIssuer(ctx, r.httpClient, r.issuerURL)
		if err != nil {
			log.Warnf("Background refresh of platform issuer failed - %v", err)
			return
		}
		r.discovery.Store(d)
	}()
}

// DiscoverIssuer fetches the issuer's OpenID configuration document.
func DiscoverIssuer(ctx context.Context, httpClient *http.Client, issuerURL string) (*Discovery, error) {
	wellKnown := strings.TrimRight(issuerURL, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("issuer discovery: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("issuer discovery failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var d Discovery
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("issuer discovery: %w", err)
	}
	if d.TokenEndpoint == "" {
		return nil, errors.New("issuer discovery: token_endpoint missing")
	}
	return &d, nil
}

// DecodeClaims reads the payload of a JWT access token without verifying it.
// Opaque tokens yield nil.
func DecodeClaims(token string) map[string]any {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

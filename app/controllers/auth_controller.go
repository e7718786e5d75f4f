package controllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	gsession "github.com/gofiber/fiber/v2/middleware/session"
	"golang.org/x/oauth2"

	"github.com/ManuelReschke/PointsBridge/app/repository"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/session"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/usercontext"
)

// DiscoverySource provides the issuer metadata for the login flow.
type DiscoverySource interface {
	Discovery(ctx context.Context) (*platform.Discovery, error)
}

// AuthConfig configures the interactive login.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	// PublicURL is where the service is reachable from the browser.
	PublicURL string
}

// AuthController runs the authorization-code login with PKCE against the
// Platform issuer and keeps the user's tokens in the session.
type AuthController struct {
	attempts  repository.AuthAttemptRepository
	discovery DiscoverySource
	store     *gsession.Store
	cfg       AuthConfig
}

func NewAuthController(attempts repository.AuthAttemptRepository, discovery DiscoverySource, store *gsession.Store, cfg AuthConfig) *AuthController {
	return &AuthController{attempts: attempts, discovery: discovery, store: store, cfg: cfg}
}

func (ac *AuthController) oauthConfig(ctx context.Context) (*oauth2.Config, error) {
	d, err := ac.discovery.Discovery(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     ac.cfg.ClientID,
		ClientSecret: ac.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  d.AuthorizationEndpoint,
			TokenURL: d.TokenEndpoint,
		},
		RedirectURL: strings.TrimRight(ac.cfg.PublicURL, "/") + "/auth/callback",
		Scopes:      []string{"openid", "offline"},
	}, nil
}

func newState() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HandleLogin starts a login and redirects to the issuer.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	ctx := c.UserContext()
	oc, err := ac.oauthConfig(ctx)
	if err != nil {
		log.Errorf("issuer discovery for login: %v", err)
		return jsonError(c, fiber.StatusBadGateway, "issuer_unavailable", "Login is currently unavailable")
	}

	state, err := newState()
	if err != nil {
		return internalError(c, "login state", err)
	}
	verifier := oauth2.GenerateVerifier()
	if _, err := ac.attempts.CreateAuthAttempt(ctx, state, verifier); err != nil {
		log.Errorf("store auth attempt: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Unable to start login")
	}

	authURL := oc.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return c.Redirect(authURL, fiber.StatusFound)
}

// HandleCallback completes the login started by HandleLogin.
func (ac *AuthController) HandleCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if e := c.Query("error"); e != "" {
		return jsonError(c, fiber.StatusBadRequest, e, c.Query("error_description", "Login was not completed"))
	}

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Missing state or code")
	}

	attempt, err := ac.attempts.GetAuthAttemptByState(ctx, state)
	if err != nil {
		log.Errorf("load auth attempt: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Unable to complete login")
	}
	if attempt == nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_state", "Unknown login attempt")
	}

	oc, err := ac.oauthConfig(ctx)
	if err != nil {
		log.Errorf("issuer discovery for callback: %v", err)
		return jsonError(c, fiber.StatusBadGateway, "issuer_unavailable", "Login is currently unavailable")
	}
	tok, err := oc.Exchange(ctx, code, oauth2.VerifierOption(attempt.CodeVerifier))
	if err != nil {
		log.Warnf("code exchange failed: %v", err)
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Login failed")
	}

	values := map[string]string{session.KeyAccessToken: tok.AccessToken}
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		values[session.KeyIDToken] = idToken
		if claims := platform.DecodeClaims(idToken); claims != nil {
			if raw, err := json.Marshal(claims); err == nil {
				values[session.KeyClaims] = string(raw)
			}
		}
	}
	if err := session.SetValues(ac.store, c, values); err != nil {
		log.Errorf("store login session: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Unable to complete login")
	}

	return c.Redirect("/organizations", fiber.StatusFound)
}

// HandleLogout ends the session.
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := session.Destroy(ac.store, c); err != nil {
		log.Warnf("destroy session: %v", err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

// HandleMe returns the logged-in user's id token claims, or null.
func (ac *AuthController) HandleMe(c *fiber.Ctx) error {
	claims := usercontext.GetUserContext(c).Claims
	if claims == "" {
		return c.JSON(nil)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(claims)
}

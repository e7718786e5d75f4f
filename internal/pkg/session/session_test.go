package session

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	store := NewSessionStore(nil, false)
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		return SetValues(store, c, map[string]string{KeyAccessToken: "tok"})
	})
	app.Get("/get", func(c *fiber.Ctx) error {
		return c.SendString(GetValue(store, c, KeyAccessToken))
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		return Destroy(store, c)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/set", nil))
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	require.True(t, strings.HasPrefix(cookie, "pointsbridge_session="))
	cookie = strings.SplitN(cookie, ";", 2)[0]

	req := httptest.NewRequest("GET", "/get", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "tok", string(body))

	req = httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("Cookie", cookie)
	_, err = app.Test(req)
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/get", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Empty(t, string(body))
}

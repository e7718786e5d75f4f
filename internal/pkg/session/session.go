package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"
)

// Session keys.
const (
	KeyAccessToken = "access_token"
	KeyIDToken     = "id_token"
	KeyClaims      = "claims"
)

// NewSessionStore keeps sessions in the cache server's database 1, next to
// the application cache in database 0. Without a cache client the store
// falls back to Fiber's in-memory storage.
func NewSessionStore(cacheClient *goredis.Client, secure bool) *session.Store {
	cfg := session.Config{
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		Expiration:     time.Hour * 8,
		KeyLookup:      "cookie:pointsbridge_session",
	}

	if cacheClient != nil {
		host, port := "localhost", 6379
		if h, p, err := net.SplitHostPort(cacheClient.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		cfg.Storage = redis.New(redis.Config{
			Host:     host,
			Port:     port,
			Password: cacheClient.Options().Password,
			Database: 1,
			Reset:    false,
		})
	}

	return session.New(cfg)
}

// SetValues stores several values in the caller's session at once.
func SetValues(store *session.Store, c *fiber.Ctx, values map[string]string) error {
	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	for k, v := range values {
		sess.Set(k, v)
	}
	return sess.Save()
}

// GetValue returns a string session value, or "" when absent.
func GetValue(store *session.Store, c *fiber.Ctx, key string) string {
	if store == nil {
		return ""
	}
	sess, err := store.Get(c)
	if err != nil {
		return ""
	}
	if s, ok := sess.Get(key).(string); ok {
		return s
	}
	return ""
}

// Destroy removes the caller's session.
func Destroy(store *session.Store, c *fiber.Ctx) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

package middleware

import (
	"github.com/gofiber/fiber/v2"
	gsession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/session"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/usercontext"
)

// UserContext loads the logged-in user from the session into Locals. It
// never rejects a request; the Require* middlewares do that.
func UserContext(store *gsession.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			c.Locals(usercontext.KeyUserContext, usercontext.UserContext{})
			return c.Next()
		}

		token, _ := sess.Get(session.KeyAccessToken).(string)
		claims, _ := sess.Get(session.KeyClaims).(string)
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
			IsLoggedIn:  token != "",
			AccessToken: token,
			Claims:      claims,
		})
		return c.Next()
	}
}

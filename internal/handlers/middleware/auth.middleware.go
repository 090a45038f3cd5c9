package middleware

import (
	"context"
	"strings"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/gofiber/fiber/v2"
)

const userLocalKey = "user"

type userContextKey struct{}

// RequireAuth verifies the bearer token and loads the account. The user
// is stashed in fiber locals so handlers never re-fetch it.
func (m *Middleware) RequireAuth() fiber.Handler {
	log := m.log.Function("RequireAuth")

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return unauthorized(c)
		}

		userID, err := m.verifier.Verify(token)
		if err != nil {
			log.Debug("token verification failed", "error", err)
			return unauthorized(c)
		}

		user, err := m.userRepo.GetByID(c.UserContext(), userID)
		if err != nil {
			log.Debug("token user not found", "userID", userID)
			return unauthorized(c)
		}

		c.Locals(userLocalKey, user)
		c.SetUserContext(context.WithValue(c.UserContext(), userContextKey{}, user))
		return c.Next()
	}
}

// UserFromContext returns the authenticated user loaded by RequireAuth.
func UserFromContext(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}

// UserFromRequestContext recovers the user from a context that has left
// the fiber layer, e.g. inside repositories or services.
func UserFromRequestContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey{}).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).
		JSON(types.Fail(types.ErrUnauthorized.Message, types.ErrUnauthorized.Code))
}

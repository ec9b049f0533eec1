package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"doctrack/internal/apperr"
	"doctrack/internal/logger"
	"doctrack/internal/model"
	"doctrack/internal/service"
)

const (
	// UserLocalKey holds the authenticated model.User.
	UserLocalKey = "user"
	// TokenLocalKey holds the raw bearer token.
	TokenLocalKey = "token"
)

// Auth resolves the bearer token to a user. Requests without a valid,
// unrevoked token are rejected with 401.
func Auth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		u, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, apperr.ErrAuthorization) {
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}
			logger.FromContext(c.UserContext()).Error("authenticate", zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "session check unavailable")
		}

		c.Locals(UserLocalKey, *u)
		c.Locals(TokenLocalKey, token)
		c.SetUserContext(logger.WithContext(c.UserContext(),
			logger.FromContext(c.UserContext()).With(zap.String("user_id", u.ID))))
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserFrom returns the user stored by Auth.
func UserFrom(c *fiber.Ctx) (model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(model.User)
	return u, ok
}

// TokenFrom returns the bearer token stored by Auth.
func TokenFrom(c *fiber.Ctx) string {
	t, _ := c.Locals(TokenLocalKey).(string)
	return t
}

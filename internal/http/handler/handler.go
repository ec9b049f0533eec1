// Package handler exposes the document, team, notification and auth use
// cases over HTTP. Handlers parse input, call the caller's session and map
// errors to the standard error envelope; they hold no business rules.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"doctrack/internal/http/middleware"
	"doctrack/internal/session"
)

// Pinger is the part of *sql.DB the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// currentSession returns the session of the authenticated caller.
func currentSession(c *fiber.Ctx, sessions *session.Manager) (*session.Session, bool) {
	u, ok := middleware.UserFrom(c)
	if !ok {
		return nil, false
	}
	return sessions.For(u), true
}

// withSession wraps h so it only runs for an authenticated caller.
func withSession(sessions *session.Manager, h func(c *fiber.Ctx, s *session.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := currentSession(c, sessions)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		return h(c, s)
	}
}

// uuidParam returns the named path parameter if it is a UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// optionalUUID reports whether v is empty or a UUID. Body ids are checked
// here so malformed values never reach the database.
func optionalUUID(v string) bool {
	if v == "" {
		return true
	}
	_, err := uuid.Parse(v)
	return err == nil
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

func invalidBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"doctrack/internal/http/middleware"
	"doctrack/internal/model"
	"doctrack/internal/service"
	"doctrack/internal/session"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User        model.User `json:"user"`
	Name        string     `json:"name"`
	Initials    string     `json:"initials"`
	UnreadCount int        `json:"unread_count"`
}

// SignUp registers a new account.
//
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param body body signUpRequest true "Account"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /auth/signup [post]
func SignUp(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signUpRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		u, err := auth.SignUp(c.UserContext(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// SignIn exchanges credentials for a bearer token.
//
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body signInRequest true "Credentials"
// @Success 200 {object} service.Session
// @Failure 403 {object} errorPayload
// @Router /auth/signin [post]
func SignIn(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signInRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		sess, err := auth.SignIn(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sess)
	}
}

// SignOut revokes the caller's token and forgets their cached session.
func SignOut(auth service.AuthService, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.SignOut(c.UserContext(), middleware.TokenFrom(c)); err != nil {
			return respondError(c, err)
		}
		if u, ok := middleware.UserFrom(c); ok {
			sessions.Drop(u.ID)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Me returns the caller's profile.
func Me(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		snap, err := s.Ensure(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		u := s.User()
		return c.JSON(meResponse{
			User:        u,
			Name:        u.Name(),
			Initials:    u.Initials(),
			UnreadCount: snap.UnreadCount(),
		})
	})
}

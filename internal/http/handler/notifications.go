package handler

import (
	"github.com/gofiber/fiber/v2"

	"doctrack/internal/model"
	"doctrack/internal/session"
)

type notificationListResponse struct {
	Items       []model.Notification `json:"items"`
	UnreadCount int                  `json:"unread_count"`
}

func notifications(c *fiber.Ctx, s *session.Session) error {
	snap := s.Snapshot()
	return c.JSON(notificationListResponse{Items: snap.Notifications, UnreadCount: snap.UnreadCount()})
}

// ListNotifications returns the caller's inbox, newest first.
//
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} notificationListResponse
// @Security BearerAuth
// @Router /notifications [get]
func ListNotifications(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		if err := s.RefreshNotifications(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		return notifications(c, s)
	})
}

func MarkNotificationRead(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := s.MarkNotificationRead(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return notifications(c, s)
	})
}

func MarkAllNotificationsRead(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		if err := s.MarkAllNotificationsRead(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		return notifications(c, s)
	})
}

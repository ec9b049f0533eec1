package service

import (
	"context"
	"strings"

	"doctrack/internal/apperr"
	"doctrack/internal/model"
	"doctrack/internal/repository"
)

// NotificationService defines the inbox use cases.
type NotificationService interface {
	List(ctx context.Context, actor model.User) ([]model.Notification, error)
	MarkRead(ctx context.Context, actor model.User, id string) error
	MarkAllRead(ctx context.Context, actor model.User) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, actor model.User) ([]model.Notification, error) {
	items, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Backend(err, "list notifications")
	}
	return items, nil
}

// MarkRead only touches the actor's own notifications.
func (s *notificationService) MarkRead(ctx context.Context, actor model.User, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("notification id is required")
	}
	if err := s.repo.MarkRead(ctx, id, actor.ID); err != nil {
		return lookupErr(err, apperr.NotFound("notification not found"), "mark notification read")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor model.User) error {
	if err := s.repo.MarkAllRead(ctx, actor.ID); err != nil {
		return apperr.Backend(err, "mark notifications read")
	}
	return nil
}

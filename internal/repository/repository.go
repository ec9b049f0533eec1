// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, redis). Lookups that find
// nothing return sql.ErrNoRows so callers can map it to their own error.
package repository

import (
	"context"
	"errors"
	"time"

	"doctrack/internal/model"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// TeamRepository persists teams and memberships.
type TeamRepository interface {
	// Create runs the privileged create_team function, which inserts the team
	// and the creator's admin membership in one statement.
	Create(ctx context.Context, name, creatorID string) (*model.Team, error)
	FindByID(ctx context.Context, id string) (*model.Team, error)
	// ListForUser returns the user's teams annotated with the user's role and member counts.
	ListForUser(ctx context.Context, userID string) ([]model.Team, error)
	TeamIDsForUser(ctx context.Context, userID string) ([]string, error)
	// Delete removes the team and its memberships and unshares its documents.
	Delete(ctx context.Context, id string) error

	FindMember(ctx context.Context, teamID, userID string) (*model.TeamMember, error)
	ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
	AddMember(ctx context.Context, teamID, userID string, role model.TeamRole) (*model.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
	// TransferAdmin demotes from to member and promotes to to admin atomically.
	TransferAdmin(ctx context.Context, teamID, fromUserID, toUserID string) error
}

// ProfileRepository resolves users and their credentials.
type ProfileRepository interface {
	Create(ctx context.Context, u *model.User, passwordHash string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail matches email case-insensitively.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindCredentials(ctx context.Context, email string) (*model.User, string, error)
}

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// ListByUser returns notifications newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// TokenBlacklist records revoked session tokens until they expire.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

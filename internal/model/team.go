package model

import (
	"encoding"
	"errors"
	"strings"
	"time"
)

// TeamRole is a member's authority within a team. Higher values carry more authority.
type TeamRole int

const (
	// RoleMember can view and comment on team documents.
	RoleMember TeamRole = iota + 1
	// RoleManager can also add members and remove plain members.
	RoleManager
	// RoleAdmin has full control; exactly one per team.
	RoleAdmin
)

// String returns the backend representation of the role.
func (r TeamRole) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleManager:
		return "manager"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Label is the human-facing role name.
func (r TeamRole) Label() string {
	switch r {
	case RoleMember:
		return "Member"
	case RoleManager:
		return "Manager"
	case RoleAdmin:
		return "Admin"
	default:
		return ""
	}
}

// Description explains what the role may do.
func (r TeamRole) Description() string {
	switch r {
	case RoleAdmin:
		return "Created the team. Full control: add/remove members, assign roles, delete team."
	case RoleManager:
		return "Can add and remove members (except other managers and admin). Can share documents with the team."
	case RoleMember:
		return "Can view and comment on documents shared with the team. Cannot manage members."
	default:
		return ""
	}
}

// ErrInvalidTeamRole is returned when a role value cannot be parsed.
var ErrInvalidTeamRole = errors.New("invalid team role")

// ParseTeamRole parses a role read from the backend. The legacy value
// "owner" is normalized to RoleAdmin.
func ParseTeamRole(s string) (TeamRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "owner":
		return RoleAdmin, nil
	case "manager":
		return RoleManager, nil
	case "member":
		return RoleMember, nil
	default:
		return 0, ErrInvalidTeamRole
	}
}

var (
	_ encoding.TextMarshaler   = TeamRole(0)
	_ encoding.TextUnmarshaler = (*TeamRole)(nil)
)

// MarshalText implements encoding.TextMarshaler.
func (r TeamRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *TeamRole) UnmarshalText(text []byte) error {
	v, err := ParseTeamRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Team is a sharing scope. Role is the caller's role in the team.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
	Role        TeamRole  `json:"role,omitempty"`
}

// TeamMember is a (team, user) membership joined with the user's profile.
type TeamMember struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`
	UserID      string    `json:"user_id"`
	Role        TeamRole  `json:"role"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

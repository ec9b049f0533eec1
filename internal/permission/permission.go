// Package permission holds the document-visibility and team-role rules.
// Every function here is pure.
package permission

import "doctrack/internal/model"

// IsOwner reports whether user owns doc.
func IsOwner(doc model.Document, user model.User) bool {
	return user.ID != "" && user.ID == doc.OwnerID
}

// CanEditDocument reports whether user may change the status, sharing or
// assignment of doc. Only the owner may.
func CanEditDocument(doc model.Document, user model.User) bool {
	return IsOwner(doc, user)
}

// CanDeleteDocument reports whether user may delete doc. Only the owner may.
func CanDeleteDocument(doc model.Document, user model.User) bool {
	return IsOwner(doc, user)
}

// CanViewDocument reports whether user sees doc: the owner, or any member of
// the team the document is shared with. teamIDs are the user's teams.
func CanViewDocument(doc model.Document, user model.User, teamIDs []string) bool {
	if IsOwner(doc, user) {
		return true
	}
	if doc.TeamID == "" {
		return false
	}
	for _, id := range teamIDs {
		if id == doc.TeamID {
			return true
		}
	}
	return false
}

// CanComment reports whether user may comment on doc. Commenting follows visibility.
func CanComment(doc model.Document, user model.User, teamIDs []string) bool {
	return CanViewDocument(doc, user, teamIDs)
}

// CanAddMember reports whether a member with role actor may invite others with role.
// Admin is never assigned by invitation.
func CanAddMember(actor, role model.TeamRole) bool {
	if actor != model.RoleAdmin && actor != model.RoleManager {
		return false
	}
	return role == model.RoleManager || role == model.RoleMember
}

// IsInvitableRole reports whether role may be given to an invited member.
func IsInvitableRole(role model.TeamRole) bool {
	return role == model.RoleManager || role == model.RoleMember
}

// CanRemoveMember reports whether actor may remove target from the team.
// self is true when actor and target are the same user.
func CanRemoveMember(actor, target model.TeamRole, self bool) bool {
	if self {
		return CanLeave(actor)
	}
	switch actor {
	case model.RoleAdmin:
		return target == model.RoleManager || target == model.RoleMember
	case model.RoleManager:
		return target == model.RoleMember
	default:
		return false
	}
}

// CanLeave reports whether a member with role may leave the team. The admin
// must transfer the role first.
func CanLeave(role model.TeamRole) bool {
	return role == model.RoleManager || role == model.RoleMember
}

// CanTransferOwnership reports whether actor may hand the admin role to a member holding target.
func CanTransferOwnership(actor, target model.TeamRole) bool {
	return actor == model.RoleAdmin && (target == model.RoleManager || target == model.RoleMember)
}

// CanDeleteTeam reports whether a member with role may delete the team.
func CanDeleteTeam(role model.TeamRole) bool {
	return role == model.RoleAdmin
}

// CanShareWithTeam reports whether a document owner holding role in a team may scope documents to it.
func CanShareWithTeam(role model.TeamRole) bool {
	return role == model.RoleAdmin || role == model.RoleManager
}

// CanManageMembers reports whether role may invite and remove members at all.
func CanManageMembers(role model.TeamRole) bool {
	return role == model.RoleAdmin || role == model.RoleManager
}

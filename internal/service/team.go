package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"doctrack/internal/apperr"
	"doctrack/internal/model"
	"doctrack/internal/permission"
	"doctrack/internal/repository"
)

const maxTeamNameLength = 100

// TeamService defines team and membership use cases.
type TeamService interface {
	// Create makes a team with actor as its admin.
	Create(ctx context.Context, actor model.User, name string) (*model.Team, error)
	// ListForUser returns actor's teams with actor's role and member counts.
	ListForUser(ctx context.Context, actor model.User) ([]model.Team, error)
	// Members lists a team's members. actor must belong to the team.
	Members(ctx context.Context, actor model.User, teamID string) ([]model.TeamMember, error)
	// AddMemberByEmail invites a registered user as manager or member.
	AddMemberByEmail(ctx context.Context, actor model.User, teamID, email string, role model.TeamRole) (*model.TeamMember, error)
	// RemoveMember removes another member as the role matrix allows.
	RemoveMember(ctx context.Context, actor model.User, teamID, targetUserID string) error
	// Leave removes actor from the team. The admin must transfer the role first.
	Leave(ctx context.Context, actor model.User, teamID string) error
	// TransferOwnership hands the admin role to another member; actor becomes a member.
	TransferOwnership(ctx context.Context, actor model.User, teamID, targetUserID string) error
	// Delete removes the team; its documents are unshared. Admin only.
	Delete(ctx context.Context, actor model.User, teamID string) error
}

type teamService struct {
	teams    repository.TeamRepository
	profiles repository.ProfileRepository
	metrics  *Metrics
}

// NewTeamService constructs a new TeamService.
func NewTeamService(teams repository.TeamRepository, profiles repository.ProfileRepository, metrics *Metrics) TeamService {
	return &teamService{teams: teams, profiles: profiles, metrics: metrics}
}

func (s *teamService) Create(ctx context.Context, actor model.User, name string) (team *model.Team, err error) {
	defer func() { s.metrics.observe("create_team", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("team name is required")
	}
	if len([]rune(name)) > maxTeamNameLength {
		return nil, apperr.Validation("team name is too long")
	}
	team, err = s.teams.Create(ctx, name, actor.ID)
	if err != nil {
		return nil, apperr.Backend(err, "create team")
	}
	return team, nil
}

func (s *teamService) ListForUser(ctx context.Context, actor model.User) ([]model.Team, error) {
	teams, err := s.teams.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Backend(err, "list teams")
	}
	return teams, nil
}

// membership returns actor's membership in teamID, or an authorization error.
func (s *teamService) membership(ctx context.Context, actor model.User, teamID string) (*model.TeamMember, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, apperr.Validation("team id is required")
	}
	m, err := s.teams.FindMember(ctx, teamID, actor.ID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Backend(err, "find team membership")
	}
	// No membership: tell a missing team apart from a team the actor is not in.
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		return nil, lookupErr(err, apperr.NotFound("team not found"), "find team")
	}
	return nil, apperr.Authorization("you are not a member of this team")
}

func (s *teamService) Members(ctx context.Context, actor model.User, teamID string) ([]model.TeamMember, error) {
	if _, err := s.membership(ctx, actor, teamID); err != nil {
		return nil, err
	}
	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, apperr.Backend(err, "list members")
	}
	return members, nil
}

func (s *teamService) AddMemberByEmail(ctx context.Context, actor model.User, teamID, email string, role model.TeamRole) (member *model.TeamMember, err error) {
	defer func() { s.metrics.observe("add_member", err) }()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if !permission.IsInvitableRole(role) {
		return nil, apperr.Validation("role must be manager or member")
	}

	self, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	if !permission.CanAddMember(self.Role, role) {
		return nil, apperr.Authorization("only team admins and managers can add members")
	}

	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupErr(err, apperr.NotFound("no registered user found with email "+email), "find profile")
	}

	member, err = s.teams.AddMember(ctx, teamID, profile.ID, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("this user is already in the team")
		}
		return nil, apperr.Backend(err, "add member")
	}
	member.Email = profile.Email
	member.DisplayName = profile.DisplayName
	return member, nil
}

func (s *teamService) RemoveMember(ctx context.Context, actor model.User, teamID, targetUserID string) (err error) {
	defer func() { s.metrics.observe("remove_member", err) }()

	if targetUserID == actor.ID {
		return s.leave(ctx, actor, teamID)
	}
	self, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if !permission.CanManageMembers(self.Role) {
		return apperr.Authorization("only team admins and managers can remove members")
	}
	target, err := s.teams.FindMember(ctx, teamID, targetUserID)
	if err != nil {
		return lookupErr(err, apperr.NotFound("member not found"), "find team membership")
	}
	if !permission.CanRemoveMember(self.Role, target.Role, false) {
		return apperr.Authorization("you cannot remove a " + target.Role.String() + " from this team")
	}
	if err := s.teams.RemoveMember(ctx, teamID, targetUserID); err != nil {
		return lookupErr(err, apperr.NotFound("member not found"), "remove member")
	}
	return nil
}

func (s *teamService) Leave(ctx context.Context, actor model.User, teamID string) (err error) {
	defer func() { s.metrics.observe("leave_team", err) }()
	return s.leave(ctx, actor, teamID)
}

func (s *teamService) leave(ctx context.Context, actor model.User, teamID string) error {
	self, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if !permission.CanLeave(self.Role) {
		return apperr.Authorization("transfer the admin role to another member before leaving")
	}
	if err := s.teams.RemoveMember(ctx, teamID, actor.ID); err != nil {
		return lookupErr(err, apperr.NotFound("member not found"), "leave team")
	}
	return nil
}

func (s *teamService) TransferOwnership(ctx context.Context, actor model.User, teamID, targetUserID string) (err error) {
	defer func() { s.metrics.observe("transfer_ownership", err) }()

	if strings.TrimSpace(targetUserID) == "" {
		return apperr.Validation("target member is required")
	}
	if targetUserID == actor.ID {
		return apperr.Validation("you already hold the admin role")
	}
	self, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if self.Role != model.RoleAdmin {
		return apperr.Authorization("only the team admin can transfer ownership")
	}
	target, err := s.teams.FindMember(ctx, teamID, targetUserID)
	if err != nil {
		return lookupErr(err, apperr.NotFound("member not found"), "find team membership")
	}
	if !permission.CanTransferOwnership(self.Role, target.Role) {
		return apperr.Validation("the target must be a non-admin member of the team")
	}
	if err := s.teams.TransferAdmin(ctx, teamID, actor.ID, targetUserID); err != nil {
		return lookupErr(err, apperr.Conflict("team membership changed, refresh and retry"), "transfer ownership")
	}
	return nil
}

func (s *teamService) Delete(ctx context.Context, actor model.User, teamID string) (err error) {
	defer func() { s.metrics.observe("delete_team", err) }()

	self, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if !permission.CanDeleteTeam(self.Role) {
		return apperr.Authorization("only the team admin can delete the team")
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return lookupErr(err, apperr.NotFound("team not found"), "delete team")
	}
	return nil
}

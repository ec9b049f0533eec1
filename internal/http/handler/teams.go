package handler

import (
	"github.com/gofiber/fiber/v2"

	"doctrack/internal/model"
	"doctrack/internal/permission"
	"doctrack/internal/session"
)

type teamListResponse struct {
	Items []model.Team `json:"items"`
}

type memberView struct {
	model.TeamMember
	RoleLabel       string `json:"role_label"`
	RoleDescription string `json:"role_description"`
}

type memberListResponse struct {
	TeamName  string       `json:"team_name"`
	CanManage bool         `json:"can_manage"`
	Items     []memberView `json:"items"`
}

type createTeamRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type transferRequest struct {
	UserID string `json:"user_id"`
}

func memberViewOf(m model.TeamMember) memberView {
	return memberView{TeamMember: m, RoleLabel: m.Role.Label(), RoleDescription: m.Role.Description()}
}

// teams answers with the caller's refreshed team list.
func teams(c *fiber.Ctx, s *session.Session) error {
	return c.JSON(teamListResponse{Items: s.Snapshot().Teams})
}

// ListTeams returns the teams the caller belongs to.
//
// @Summary List teams
// @Tags teams
// @Produce json
// @Success 200 {object} teamListResponse
// @Security BearerAuth
// @Router /teams [get]
func ListTeams(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		if err := s.RefreshTeams(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		return teams(c, s)
	})
}

// CreateTeam creates a team with the caller as its admin.
//
// @Summary Create team
// @Tags teams
// @Accept json
// @Produce json
// @Param body body createTeamRequest true "Team"
// @Success 201 {object} model.Team
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /teams [post]
func CreateTeam(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		var req createTeamRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		team, err := s.CreateTeam(c.UserContext(), req.Name)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(team)
	})
}

func DeleteTeam(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := s.DeleteTeam(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return teams(c, s)
	})
}

// ListMembers returns a team's roster.
//
// @Summary List members
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} memberListResponse
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /teams/{id}/members [get]
func ListMembers(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		members, err := s.Members(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		if err := s.RefreshTeams(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		resp := memberListResponse{Items: make([]memberView, len(members))}
		for i, m := range members {
			resp.Items[i] = memberViewOf(m)
		}
		if team, ok := s.Snapshot().Team(id); ok {
			resp.TeamName = team.Name
			resp.CanManage = permission.CanManageMembers(team.Role)
		}
		return c.JSON(resp)
	})
}

// AddMember invites a registered user by email.
//
// @Summary Add member
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param body body addMemberRequest true "Invitee"
// @Success 201 {object} memberView
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /teams/{id}/members [post]
func AddMember(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req addMemberRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		role := model.RoleMember
		if req.Role != "" {
			r, err := model.ParseTeamRole(req.Role)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ROLE", "invalid team role")
			}
			role = r
		}
		member, err := s.AddMember(c.UserContext(), id, req.Email, role)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(memberViewOf(*member))
	})
}

func RemoveMember(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		userID, ok := uuidParam(c, "userId")
		if !ok {
			return invalidID(c)
		}
		if err := s.RemoveMember(c.UserContext(), id, userID); err != nil {
			return respondError(c, err)
		}
		return teams(c, s)
	})
}

func LeaveTeam(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := s.LeaveTeam(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return teams(c, s)
	})
}

// TransferOwnership hands the admin role to another member; the caller becomes a member.
func TransferOwnership(sessions *session.Manager) fiber.Handler {
	return withSession(sessions, func(c *fiber.Ctx, s *session.Session) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req transferRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if req.UserID == "" || !optionalUUID(req.UserID) {
			return invalidID(c)
		}
		if err := s.TransferOwnership(c.UserContext(), id, req.UserID); err != nil {
			return respondError(c, err)
		}
		return teams(c, s)
	})
}

package postgres

import (
	"context"
	"database/sql"

	"doctrack/internal/model"
	"doctrack/internal/repository"
)

// TeamPostgres is a PostgreSQL implementation of repository.TeamRepository.
type TeamPostgres struct {
	db *sql.DB
}

// NewTeamPostgres creates a new TeamPostgres repository.
func NewTeamPostgres(db *sql.DB) *TeamPostgres {
	return &TeamPostgres{db: db}
}

var _ repository.TeamRepository = (*TeamPostgres)(nil)

// Create calls create_team, which inserts the team and the admin membership atomically.
func (r *TeamPostgres) Create(ctx context.Context, name, creatorID string) (*model.Team, error) {
	const q = `SELECT id, name, created_by, created_at FROM create_team($1, $2)`
	var t model.Team
	if err := r.db.QueryRowContext(ctx, q, name, creatorID).Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.MemberCount = 1
	t.Role = model.RoleAdmin
	return &t, nil
}

func (r *TeamPostgres) FindByID(ctx context.Context, id string) (*model.Team, error) {
	const q = `
		SELECT t.id, t.name, t.created_by, t.created_at,
			(SELECT COUNT(*) FROM team_members c WHERE c.team_id = t.id)
		FROM teams t
		WHERE t.id = $1
	`
	var t model.Team
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &t.MemberCount); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamPostgres) ListForUser(ctx context.Context, userID string) ([]model.Team, error) {
	const q = `
		SELECT t.id, t.name, t.created_by, t.created_at, m.role,
			(SELECT COUNT(*) FROM team_members c WHERE c.team_id = t.id)
		FROM team_members m
		JOIN teams t ON t.id = m.team_id
		WHERE m.user_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]model.Team, 0)
	for rows.Next() {
		var (
			t    model.Team
			role string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &role, &t.MemberCount); err != nil {
			return nil, err
		}
		if t.Role, err = model.ParseTeamRole(role); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *TeamPostgres) TeamIDsForUser(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT team_id FROM team_members WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete unshares the team's documents, drops memberships and removes the team in one transaction.
func (r *TeamPostgres) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	const unshare = `UPDATE documents SET team_id = NULL, assigned_to = NULL, assigned_to_name = NULL WHERE team_id = $1`
	if _, err := tx.ExecContext(ctx, unshare, id); err != nil {
		return err
	}
	const members = `DELETE FROM team_members WHERE team_id = $1`
	if _, err := tx.ExecContext(ctx, members, id); err != nil {
		return err
	}
	const team = `DELETE FROM teams WHERE id = $1`
	res, err := tx.ExecContext(ctx, team, id)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

const memberSelect = `
	SELECT m.id, m.team_id, m.user_id, m.role, COALESCE(p.email, ''), COALESCE(p.display_name, ''), m.created_at
	FROM team_members m
	LEFT JOIN profiles p ON p.id = m.user_id
`

func scanMember(row rowScanner) (*model.TeamMember, error) {
	var (
		m    model.TeamMember
		role string
	)
	if err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &role, &m.Email, &m.DisplayName, &m.CreatedAt); err != nil {
		return nil, err
	}
	r, err := model.ParseTeamRole(role)
	if err != nil {
		return nil, err
	}
	m.Role = r
	return &m, nil
}

func (r *TeamPostgres) FindMember(ctx context.Context, teamID, userID string) (*model.TeamMember, error) {
	q := memberSelect + `WHERE m.team_id = $1 AND m.user_id = $2`
	return scanMember(r.db.QueryRowContext(ctx, q, teamID, userID))
}

func (r *TeamPostgres) ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	q := memberSelect + `WHERE m.team_id = $1 ORDER BY m.created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]model.TeamMember, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember inserts a membership. An existing (team, user) pair yields repository.ErrDuplicate.
func (r *TeamPostgres) AddMember(ctx context.Context, teamID, userID string, role model.TeamRole) (*model.TeamMember, error) {
	const q = `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, team_id, user_id, created_at
	`
	m := model.TeamMember{Role: role}
	err := r.db.QueryRowContext(ctx, q, teamID, userID, role.String()).Scan(&m.ID, &m.TeamID, &m.UserID, &m.CreatedAt)
	if IsUniqueViolation(err) {
		return nil, repository.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *TeamPostgres) RemoveMember(ctx context.Context, teamID, userID string) error {
	const q = `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, teamID, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// TransferAdmin demotes before promoting so the one-admin index holds at every statement.
func (r *TeamPostgres) TransferAdmin(ctx context.Context, teamID, fromUserID, toUserID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	const demote = `UPDATE team_members SET role = 'member' WHERE team_id = $1 AND user_id = $2 AND role = 'admin'`
	res, err := tx.ExecContext(ctx, demote, teamID, fromUserID)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}

	const promote = `UPDATE team_members SET role = 'admin' WHERE team_id = $1 AND user_id = $2 AND role <> 'admin'`
	res, err = tx.ExecContext(ctx, promote, teamID, toUserID)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

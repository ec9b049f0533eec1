package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"doctrack/internal/model"
	"doctrack/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, tracking_id, title, description, category, status, file_type, file_size, file_path, ` +
	`user_id, owner_name, team_id, assigned_to, assigned_to_name, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d                                    model.Document
		status                               string
		filePath, teamID, assignee, assignTo sql.NullString
	)
	if err := row.Scan(
		&d.ID,
		&d.TrackingID,
		&d.Title,
		&d.Description,
		&d.Category,
		&status,
		&d.FileType,
		&d.FileSize,
		&filePath,
		&d.OwnerID,
		&d.OwnerName,
		&teamID,
		&assignee,
		&assignTo,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st, err := model.ParseDocumentStatus(status)
	if err != nil {
		return nil, err
	}
	d.Status = st
	d.FilePath = filePath.String
	d.TeamID = teamID.String
	d.AssigneeID = assignee.String
	d.AssigneeName = assignTo.String
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NextTrackingSequence bumps the owner's counter for year and returns the new value.
func (r *DocumentPostgres) NextTrackingSequence(ctx context.Context, ownerID string, year int) (int, error) {
	const q = `
		INSERT INTO tracking_counters (user_id, year, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, year) DO UPDATE SET last_seq = tracking_counters.last_seq + 1
		RETURNING last_seq
	`
	var seq int
	if err := r.db.QueryRowContext(ctx, q, ownerID, year).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// CreateWithHistory inserts the document row and its first history row in one transaction.
func (r *DocumentPostgres) CreateWithHistory(ctx context.Context, doc *model.Document, entry *model.HistoryEntry) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + documentColumns
	row := tx.QueryRowContext(ctx, q,
		doc.ID,
		doc.TrackingID,
		doc.Title,
		doc.Description,
		doc.Category,
		string(doc.Status),
		doc.FileType,
		doc.FileSize,
		nullString(doc.FilePath),
		doc.OwnerID,
		doc.OwnerName,
		nullString(doc.TeamID),
		nullString(doc.AssigneeID),
		nullString(doc.AssigneeName),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	if err := insertHistory(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns the owner's documents.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY updated_at DESC, id DESC`
	return r.list(ctx, q, ownerID)
}

// ListByTeams returns documents scoped to any of the given teams.
func (r *DocumentPostgres) ListByTeams(ctx context.Context, teamIDs []string) ([]model.Document, error) {
	if len(teamIDs) == 0 {
		return []model.Document{}, nil
	}
	placeholders := make([]string, len(teamIDs))
	args := make([]any, len(teamIDs))
	for i, id := range teamIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := `SELECT ` + documentColumns + ` FROM documents WHERE team_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY updated_at DESC, id DESC`
	return r.list(ctx, q, args...)
}

func (r *DocumentPostgres) list(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus persists the new status and its history entry together.
func (r *DocumentPostgres) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, at time.Time, entry *model.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `UPDATE documents SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id, string(status), at)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTeam changes the sharing scope; a changed scope drops the assignee.
func (r *DocumentPostgres) UpdateTeam(ctx context.Context, id, teamID string, at time.Time) error {
	const q = `
		UPDATE documents SET
			team_id = $2,
			assigned_to = CASE WHEN team_id IS NOT DISTINCT FROM $2 THEN assigned_to END,
			assigned_to_name = CASE WHEN team_id IS NOT DISTINCT FROM $2 THEN assigned_to_name END,
			updated_at = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, nullString(teamID), at)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// UpdateAssignment sets the assignee columns.
func (r *DocumentPostgres) UpdateAssignment(ctx context.Context, id, assigneeID, assigneeName string, at time.Time) error {
	const q = `UPDATE documents SET assigned_to = $2, assigned_to_name = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, nullString(assigneeID), nullString(assigneeName), at)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// AppendHistory inserts a single history entry.
func (r *DocumentPostgres) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	return insertHistory(ctx, r.db, entry)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertHistory(ctx context.Context, db execer, e *model.HistoryEntry) error {
	const q = `
		INSERT INTO document_history (id, document_id, status, comment, updated_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db.ExecContext(ctx, q, e.ID, e.DocumentID, string(e.Status), e.Comment, e.UpdatedBy, e.CreatedAt)
	return err
}

// ListHistory returns entries oldest first.
func (r *DocumentPostgres) ListHistory(ctx context.Context, documentID string) ([]model.HistoryEntry, error) {
	const q = `
		SELECT id, document_id, status, comment, updated_by, created_at
		FROM document_history
		WHERE document_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.HistoryEntry, 0)
	for rows.Next() {
		var (
			e      model.HistoryEntry
			status string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &status, &e.Comment, &e.UpdatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Status, err = model.ParseDocumentStatus(status); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// expectRow turns an update that touched nothing into sql.ErrNoRows.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
